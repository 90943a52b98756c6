package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ops-panel/internal/dto"
	"ops-panel/internal/repository"
	"ops-panel/internal/service"
)

var (
	depPeriod string
	depActor  string
)

var depreciationCmd = &cobra.Command{
	Use:   "depreciation",
	Short: "折旧批处理",
}

var depreciationRunCmd = &cobra.Command{
	Use:   "run",
	Short: "计提指定期间的月度折旧（可重复执行）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDepreciation(func(ctx context.Context, svc service.DepreciationService, actor string) error {
			result, err := svc.RunMonthly(ctx, depPeriod, actor)
			if err != nil {
				return err
			}
			return renderRunResult(cmd.OutOrStdout(), result)
		})
	},
}

var depreciationPostCmd = &cobra.Command{
	Use:   "post",
	Short: "过账指定期间全部未过账折旧明细",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDepreciation(func(ctx context.Context, svc service.DepreciationService, actor string) error {
			result, err := svc.PostAllForPeriod(ctx, depPeriod, actor)
			if err != nil {
				return err
			}
			return renderPostResult(cmd.OutOrStdout(), result)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{depreciationRunCmd, depreciationPostCmd} {
		c.Flags().StringVar(&depPeriod, "period", "", "会计期间 YYYY-MM")
		c.Flags().StringVar(&depActor, "actor", "", "操作人 ID（默认 scheduler.system_actor_id）")
		_ = c.MarkFlagRequired("period")
		depreciationCmd.AddCommand(c)
	}
}

func withDepreciation(fn func(ctx context.Context, svc service.DepreciationService, actor string) error) error {
	actor := depActor
	if actor == "" {
		actor = cfg.Scheduler.SystemActorID
	}
	if actor == "" {
		return fmt.Errorf("未指定 --actor，且 scheduler.system_actor_id 为空")
	}

	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := service.NewDepreciationService(repository.NewRepository(db), logger)
	return fn(context.Background(), svc, actor)
}

// ── 表格输出 ──

func renderRunResult(w io.Writer, result *dto.RunMonthlyResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("RESULT", "ASSET", "PROFILE", "AMOUNT", "DETAIL")

	rows := func(outcome string, items []dto.DepreciationRunItem) error {
		for _, it := range items {
			amount := ""
			if it.Amount != nil {
				amount = it.Amount.StringFixed(2)
			}
			asset := it.AssetCode
			if asset == "" {
				asset = it.AssetID
			}
			if err := table.Append(outcome, asset, it.ProfileID, amount, it.Reason); err != nil {
				return err
			}
		}
		return nil
	}
	if err := rows("created", result.Created); err != nil {
		return err
	}
	if err := rows("skipped", result.Skipped); err != nil {
		return err
	}
	if err := rows("failed", result.Failed); err != nil {
		return err
	}

	fmt.Fprintf(w, "期间 %s：新增 %d，跳过 %d，失败 %d\n",
		result.Period, len(result.Created), len(result.Skipped), len(result.Failed))
	return table.Render()
}

func renderPostResult(w io.Writer, result *dto.PostPeriodResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("RESULT", "ASSET", "ENTRY", "DETAIL")

	for _, it := range result.Posted {
		if err := table.Append("posted", it.AssetID, it.EntryID, ""); err != nil {
			return err
		}
	}
	for _, it := range result.Failed {
		if err := table.Append("failed", it.AssetID, it.EntryID, it.Reason); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "期间 %s：过账 %d，失败 %d\n", result.Period, len(result.Posted), len(result.Failed))
	return table.Render()
}
