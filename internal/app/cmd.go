package app

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// serveOptions はserveサブコマンドのフラグ。
type serveOptions struct {
	// inMemory がtrueの場合、PostgreSQLの代わりにプロセス内のユーザーストアを使用する。
	inMemory bool
}

// NewRootCommand はpizzauthのルートコマンドを生成する。
// サブコマンド無しで起動した場合はserveとして動作する。
func NewRootCommand(w io.Writer) *cobra.Command {
	rootOpts := &serveOptions{}

	root := &cobra.Command{
		Use:   "pizzauth",
		Short: "pizzauth - email/password sign-in and bearer token API",
		Long: `pizzauth issues signed bearer tokens for registered users and
resolves the current user from a presented token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, w, rootOpts)
		},
	}
	addServeFlags(root, rootOpts)

	root.SetOut(w)
	root.SetErr(w)

	root.AddCommand(newServeCommand(w))
	root.AddCommand(newMigrateCommand(w))
	root.AddCommand(newHealthcheckCommand())

	return root
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().BoolVar(&opts.inMemory, "in-memory", false, "use an in-process user store instead of PostgreSQL")
}

// newServeCommand はAPIサーバーを起動するサブコマンドを生成する。
func newServeCommand(w io.Writer) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, w, opts)
		},
	}
	addServeFlags(cmd, opts)
	return cmd
}

// newMigrateCommand はデータベースマイグレーションを実行するサブコマンドを生成する。
func newMigrateCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the PostgreSQL database named by DATABASE_URL.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Init(w)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabaseURL(); err != nil {
				return err
			}
			return runMigrate(cfg)
		},
	}
}

// newHealthcheckCommand はDockerヘルスチェック用のサブコマンドを生成する。
// 軽量サブコマンドのため、設定の読み込みやログの初期化は行わない。
func newHealthcheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check the health endpoint of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			port := os.Getenv("SERVER_PORT")
			if port == "" {
				port = "8080"
			}
			return runHealthcheck(port)
		},
	}
}

func serve(cmd *cobra.Command, w io.Writer, opts *serveOptions) error {
	cfg, err := Init(w)
	if err != nil {
		return err
	}
	return runServe(cmd.Context(), cfg, *opts)
}
