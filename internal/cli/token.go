package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ops-panel/pkg/jwt"
)

var (
	tokenUser  string
	tokenPerms []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Access Token 管理",
}

// 运维与集成测试用；正式环境由外部认证服务签发
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "签发 Access Token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(tokenUser); err != nil {
			return fmt.Errorf("--user 必须是 UUID: %w", err)
		}

		token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(tokenUser, tokenPerms)
		if err != nil {
			return fmt.Errorf("签发 Token 失败: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenUser, "user", "", "用户 ID")
	tokenIssueCmd.Flags().StringSliceVar(&tokenPerms, "perm", nil, "权限点，可重复或逗号分隔")
	_ = tokenIssueCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(tokenIssueCmd)
}
