package main

import (
	"context"
	"fmt"
	"inventory/providers"
	configprovider "inventory/providers/configProvider"
	"inventory/server"
	assetservice "inventory/services/asset"
	"io"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
	v    = viper.New()

	outPath string
	qrSize  int
)

var rootCmd = &cobra.Command{
	Use:           "inventory",
	Short:         "CEE-SC computer inventory service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("store", "", "store driver: file, postgres, sqlite, redis or memory")
	flags.String("store-path", "", "directory of the file store")
	flags.String("port", "", "http listen port")
	_ = v.BindPFlag("STORE_DRIVER", flags.Lookup("store"))
	_ = v.BindPFlag("STORE_PATH", flags.Lookup("store-path"))
	_ = v.BindPFlag("SERVER_PORT", flags.Lookup("port"))

	exportCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	backupCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	qrcodeCmd.Flags().StringVarP(&outPath, "out", "o", "", "output PNG file (default <tag>.png)")
	qrcodeCmd.Flags().IntVar(&qrSize, "size", assetservice.DefaultQRSize, "image size in pixels")

	exportCmd.AddCommand(exportCSVCmd)
	sheetsCmd.AddCommand(sheetsPushCmd, sheetsPullCmd)
	rootCmd.AddCommand(serveCmd, exportCmd, backupCmd, restoreCmd, qrcodeCmd, sheetsCmd, statsCmd)
}

// withServer loads the configuration, wires the services, runs fn and closes
// the store again.
func withServer(fn func(ctx context.Context, srv *server.Server) error) error {
	cfg := configprovider.NewConfigProvider(v)
	if err := cfg.LoadEnv(); err != nil {
		return err
	}
	ctx := context.Background()
	srv, err := server.SrvInit(ctx, cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, srv)
	if err := srv.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// output opens outPath, or stdout when it is empty.
func output(fallback string) (io.WriteCloser, error) {
	path := outPath
	if path == "" {
		path = fallback
	}
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create output file")
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func printJSON(value interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			srv.Logger.GetLogger().Info("server initialized...")

			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-done:
			case err := <-errCh:
				return err
			}
			srv.Logger.GetLogger().Info("server stopped...")
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the inventory",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write the inventory as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			w, err := output("")
			if err != nil {
				return err
			}
			defer w.Close()
			return srv.Assets.ExportCSV(ctx, w)
		})
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a JSON backup of the inventory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			w, err := output("")
			if err != nil {
				return err
			}
			defer w.Close()
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(srv.Assets.Backup(ctx))
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Replace the inventory with a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to read backup")
		}
		return withServer(func(ctx context.Context, srv *server.Server) error {
			n, err := srv.Assets.Restore(ctx, raw)
			if err != nil {
				return err
			}
			fmt.Printf("restored %d assets\n", n)
			return nil
		})
	},
}

var qrcodeCmd = &cobra.Command{
	Use:   "qrcode TAG",
	Short: "Render the QR label of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			asset, err := srv.Assets.FindByTag(ctx, args[0])
			if err != nil {
				return err
			}
			png, err := srv.Assets.QRCode(ctx, asset.ID, qrSize)
			if err != nil {
				return err
			}
			w, err := output(asset.Tag + ".png")
			if err != nil {
				return err
			}
			defer w.Close()
			_, err = w.Write(png)
			return err
		})
	},
}

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Synchronise with the configured spreadsheet",
}

var sheetsPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Replace the spreadsheet contents with the local inventory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			assets := srv.Assets.List(ctx)
			if err := srv.Sheets.Push(ctx, assets); err != nil {
				return err
			}
			logResult(srv.Logger, "pushed", len(assets))
			return nil
		})
	},
}

var sheetsPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local inventory with the spreadsheet contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			assets, err := srv.Sheets.Pull(ctx)
			if err != nil {
				return err
			}
			if err := srv.Assets.ReplaceAll(ctx, assets); err != nil {
				return err
			}
			logResult(srv.Logger, "pulled", len(assets))
			return nil
		})
	},
}

func logResult(logger providers.ZapLoggerProvider, action string, n int) {
	logger.GetLogger().Info("sheets sync finished", zap.String("action", action), zap.Int("assets", n))
	fmt.Printf("%s %d assets\n", action, n)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print inventory statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(func(ctx context.Context, srv *server.Server) error {
			return printJSON(srv.Assets.Statistics(ctx))
		})
	},
}
