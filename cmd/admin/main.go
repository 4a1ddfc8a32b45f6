package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tienda-api/internal/app"
	"tienda-api/internal/core/config"
	"tienda-api/internal/core/logger"
	"tienda-api/internal/domain"
	"tienda-api/internal/validation"
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	configPath string
	app        *app.App
	cleanup    func()
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Operational commands for tienda-api",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.close()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")

	root.AddCommand(
		c.migrateCmd(),
		c.seedCategoriesCmd(),
		c.createUserCmd(),
		c.usersCmd(),
		c.statsCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) open() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	log, cleanup := logger.New("warn", false)
	a, err := app.New(cfg, log, nil)
	if err != nil {
		cleanup()
		return err
	}
	c.app, c.cleanup = a, cleanup
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.cleanup()
	return err
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the usuarios, productos, categorias and pedidos tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.app.Cfg.Production() {
				return errors.New("migrate is disabled in production")
			}
			if err := c.app.Migrate(cmd.Context()); err != nil {
				return err
			}
			c.app.Log.Info("migrate done", zap.String("driver", c.app.Cfg.DB.Driver))
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func (c *cli) seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories NAME...",
		Short: "Insert categories by name (existing names are left untouched)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Nombre", "Estado"})
			for _, name := range args {
				cat, created, err := c.app.Categories.EnsureByName(cmd.Context(), name)
				if err != nil {
					return err
				}
				state := "existente"
				if created {
					state = "creada"
				}
				t.AppendRow(table.Row{cat.ID, cat.Name, state})
			}
			t.Render()
			return nil
		},
	}
}

func (c *cli) createUserCmd() *cobra.Command {
	var nombre, email, password string
	var edad int
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user through the same validation as POST /usuarios",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := validation.Payload{"nombre": nombre, "email": email, "password": password}
			if cmd.Flags().Changed("edad") {
				p["edad"] = edad
			}
			u, err := c.app.Users.Create(cmd.Context(), p)
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				for _, d := range ve.Details {
					fmt.Fprintln(cmd.ErrOrStderr(), "-", d)
				}
				return errors.New("invalid user")
			}
			if err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), []domain.User{*u})
			return nil
		},
	}
	cmd.Flags().StringVar(&nombre, "nombre", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "plain password (6-12 characters)")
	cmd.Flags().IntVar(&edad, "edad", 0, "age")
	_ = cmd.MarkFlagRequired("nombre")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) usersCmd() *cobra.Command {
	var pagina, limite int
	var activo string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := domain.UserFilter{Page: domain.NewPage(pagina, limite)}
			if cmd.Flags().Changed("activo") {
				active := activo == "true"
				f.Active = &active
			}
			users, err := c.app.Users.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), users)
			return nil
		},
	}
	cmd.Flags().IntVar(&pagina, "pagina", domain.DefaultPage, "page number")
	cmd.Flags().IntVar(&limite, "limite", domain.DefaultLimit, "page size")
	cmd.Flags().StringVar(&activo, "activo", "", "true lists active users, any other value inactive ones")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics snapshot served by GET /estadisticas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.Stats.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Grupo", "Métrica", "Valor"})
			t.AppendRows([]table.Row{
				{"usuarios", "total", s.Users.Total},
				{"productos", "total", s.Products.Total},
				{"productos", "stock_total", s.Products.TotalStock},
				{"productos", "precio_promedio", s.Products.AveragePrice.StringFixed(2)},
				{"ventas", "pedidos_mes", s.Sales.Orders},
				{"ventas", "ingresos_mes", s.Sales.Revenue.StringFixed(2)},
			})
			t.Render()
			return nil
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func printUsers(w io.Writer, users []domain.User) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Nombre", "Email", "Edad", "Activo", "Registro"})
	for _, u := range users {
		edad := "-"
		if u.Age != nil {
			edad = strconv.Itoa(*u.Age)
		}
		t.AppendRow(table.Row{u.ID, u.Name, u.Email, edad, u.Active, u.RegisteredAt.Format("2006-01-02 15:04")})
	}
	t.AppendFooter(table.Row{"", "", "", "", "total", len(users)})
	t.Render()
}
