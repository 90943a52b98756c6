package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		p := NewPagination(tc.total, 1, tc.limit)
		if p.TotalPages != tc.want {
			t.Errorf("total=%d limit=%d: 期望 totalPages=%d，实际=%d", tc.total, tc.limit, tc.want, p.TotalPages)
		}
	}
}

func TestOK_EnvelopeAndDecimalAsNumber(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		OK(c, gin.H{"amount": decimal.RequireFromString("12.50")})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if body["success"] != true {
		t.Errorf("期望 success=true，实际=%v", body["success"])
	}
	meta, _ := body["meta"].(map[string]interface{})
	if meta["path"] != "/x" {
		t.Errorf("期望 meta.path=/x，实际=%v", meta["path"])
	}
	data, _ := body["data"].(map[string]interface{})
	if _, ok := data["amount"].(float64); !ok {
		t.Errorf("期望 amount 序列化为数字，实际=%T", data["amount"])
	}
}

func TestConflict_Envelope(t *testing.T) {
	r := gin.New()
	r.POST("/x", func(c *gin.Context) { Conflict(c, 20003, "状态冲突") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际=%d", w.Code)
	}
	var resp Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || resp.Code != 20003 || resp.Message != "状态冲突" {
		t.Errorf("错误响应字段不符: %+v", resp)
	}
}
