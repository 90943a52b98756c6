package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ops-panel/internal/dto"
)

func TestRenderRunResult(t *testing.T) {
	amount := decimal.RequireFromString("200")
	result := &dto.RunMonthlyResult{
		Period: "2024-03",
		Created: []dto.DepreciationRunItem{
			{ProfileID: "p-1", AssetID: "a-1", AssetCode: "EX-01", Amount: &amount},
		},
		Skipped: []dto.DepreciationRunItem{
			{ProfileID: "p-2", AssetID: "a-2", Reason: "本期已计提"},
		},
	}

	var buf bytes.Buffer
	if err := renderRunResult(&buf, result); err != nil {
		t.Fatalf("renderRunResult 应成功: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"新增 1，跳过 1，失败 0", "EX-01", "200.00", "a-2", "本期已计提"} {
		if !strings.Contains(out, want) {
			t.Errorf("输出应包含 %q:\n%s", want, out)
		}
	}
}

func TestRenderPostResult(t *testing.T) {
	result := &dto.PostPeriodResult{
		Period: "2024-03",
		Posted: []dto.PostItem{{EntryID: "e-1", AssetID: "a-1"}},
		Failed: []dto.PostItem{{EntryID: "e-2", AssetID: "a-2", Reason: "db down"}},
	}

	var buf bytes.Buffer
	if err := renderPostResult(&buf, result); err != nil {
		t.Fatalf("renderPostResult 应成功: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "过账 1，失败 1") || !strings.Contains(out, "db down") {
		t.Errorf("输出内容错误:\n%s", out)
	}
}
