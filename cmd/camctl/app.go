package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Havens-blog/e-cam-web/internal/api/cam"
	"github.com/Havens-blog/e-cam-web/internal/api/iam"
	"github.com/Havens-blog/e-cam-web/internal/config"
	"github.com/Havens-blog/e-cam-web/internal/report"
	"github.com/Havens-blog/e-cam-web/internal/runtime"
	"github.com/Havens-blog/e-cam-web/internal/server"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	rt   *runtime.Runtime
	mock *server.Server
}

func newApp(out, errOut io.Writer) *cli.Command {
	a := &app{out: out, errOut: errOut}

	return &cli.Command{
		Name:      "camctl",
		Usage:     "query and manage cloud accounts, assets and IAM",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config file"},
			&cli.BoolFlag{Name: "dump-logs", Usage: "print buffered log entries as JSON on exit"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "write logs to stderr"},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			{
				Name:  "accounts",
				Usage: "cloud accounts",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list cloud accounts",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "provider"},
							&cli.StringFlag{Name: "status"},
						},
						Action: a.listAccounts,
					},
				},
			},
			{
				Name:  "assets",
				Usage: "cloud assets",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list assets",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "provider"},
							&cli.StringFlag{Name: "type", Usage: "asset type, e.g. ecs"},
							&cli.StringFlag{Name: "region"},
						},
						Action: a.listAssets,
					},
					{
						Name:      "get",
						Usage:     "show one asset",
						ArgsUsage: "<id>",
						Action:    a.getAsset,
					},
				},
			},
			{
				Name:  "iam",
				Usage: "identity and access management",
				Commands: []*cli.Command{
					{
						Name:  "users",
						Usage: "list users of a tenant",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "tenant", Usage: "defaults to the selected tenant"},
							&cli.StringFlag{Name: "keyword"},
						},
						Action: a.listUsers,
					},
					{
						Name:  "export",
						Usage: "export audit logs",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "format", Value: string(iam.ExportCSV), Usage: "csv or json"},
							&cli.StringFlag{Name: "tenant"},
						},
						Action: a.exportAudit,
					},
				},
			},
			{
				Name:  "login",
				Usage: "store a bearer token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
					&cli.StringFlag{Name: "tenant"},
				},
				Action: a.login,
			},
			{
				Name:  "tenant",
				Usage: "tenant selection",
				Commands: []*cli.Command{
					{
						Name:      "use",
						Usage:     "select the tenant sent with every request",
						ArgsUsage: "<id>",
						Action:    a.useTenant,
					},
				},
			},
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	logOutput := io.Discard
	if cmd.Bool("verbose") {
		logOutput = a.errOut
	}
	opts := []runtime.Option{
		runtime.WithNotifier(report.WriterNotifier{W: a.errOut}),
		runtime.WithLogOutput(logOutput),
	}

	if cfg.API.UseMock {
		baseURL, err := a.startMock()
		if err != nil {
			return ctx, fmt.Errorf("start mock backend: %w", err)
		}
		opts = append(opts, runtime.WithBaseURL(baseURL))
	}

	a.rt, err = runtime.New(cfg, opts...)
	if err != nil {
		return ctx, err
	}
	return ctx, nil
}

func (a *app) startMock() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	a.mock = server.New(slog.New(slog.DiscardHandler), server.Options{Addr: l.Addr().String()})
	go a.mock.Serve(l)
	return "http://" + l.Addr().String() + "/api/v1", nil
}

func (a *app) after(_ context.Context, cmd *cli.Command) error {
	// Shutdown runs on a fresh context so an interrupted command still flushes.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if a.rt != nil {
		if cmd.Bool("dump-logs") {
			data, err := a.rt.Logs().Export()
			if err != nil {
				errs = append(errs, fmt.Errorf("export logs: %w", err))
			} else {
				fmt.Fprintln(a.errOut, string(data))
			}
		}
		errs = append(errs, a.rt.Close(ctx))
	}
	if a.mock != nil {
		errs = append(errs, a.mock.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) listAccounts(ctx context.Context, cmd *cli.Command) error {
	list, err := runtime.Retry(ctx, a.rt, func(ctx context.Context) (*cam.AccountList, error) {
		return a.rt.CAM.ListAccounts(ctx, cam.ListAccountsParams{
			Provider: cmd.String("provider"),
			Status:   cmd.String("status"),
		})
	})
	if err != nil {
		return err
	}
	return a.print(list)
}

func (a *app) listAssets(ctx context.Context, cmd *cli.Command) error {
	params := cam.ListAssetsParams{
		Provider: cmd.String("provider"),
		Region:   cmd.String("region"),
	}
	list, err := runtime.Retry(ctx, a.rt, func(ctx context.Context) (*cam.AssetList, error) {
		if t := cmd.String("type"); t != "" {
			return a.rt.CAM.ListAssetsByType(ctx, t, params)
		}
		return a.rt.CAM.ListAssets(ctx, params)
	})
	if err != nil {
		return err
	}
	return a.print(list)
}

func (a *app) getAsset(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd)
	if err != nil {
		return err
	}
	asset, err := runtime.Retry(ctx, a.rt, func(ctx context.Context) (*cam.Asset, error) {
		return a.rt.CAM.GetAsset(ctx, id)
	})
	if err != nil {
		return err
	}
	return a.print(asset)
}

func (a *app) listUsers(ctx context.Context, cmd *cli.Command) error {
	page, err := a.rt.IAM.ListUsers(ctx, iam.ListUsersParams{
		TenantID: cmd.String("tenant"),
		Keyword:  cmd.String("keyword"),
	})
	if err != nil {
		return err
	}
	return a.print(page)
}

func (a *app) exportAudit(ctx context.Context, cmd *cli.Command) error {
	body, err := a.rt.IAM.ExportAuditLogs(ctx, iam.ExportAuditLogsParams{
		Format:   iam.ExportFormat(cmd.String("format")),
		TenantID: cmd.String("tenant"),
	})
	if err != nil {
		return err
	}
	_, err = a.out.Write(body)
	return err
}

func (a *app) login(ctx context.Context, cmd *cli.Command) error {
	store := a.rt.Store()
	if err := store.SetToken(ctx, cmd.String("token")); err != nil {
		return err
	}
	if tenant := cmd.String("tenant"); tenant != "" {
		if err := store.SetTenantID(ctx, tenant); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, "logged in")
	return nil
}

func (a *app) useTenant(ctx context.Context, cmd *cli.Command) error {
	tenant := cmd.Args().First()
	if tenant == "" {
		return errors.New("tenant id required")
	}
	if err := a.rt.Store().SetTenantID(ctx, tenant); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "tenant %s selected\n", tenant)
	return nil
}

func idArg(cmd *cli.Command) (int64, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return 0, errors.New("asset id required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid asset id %q: %w", arg, err)
	}
	return id, nil
}
