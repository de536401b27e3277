// This program performs administrative tasks for the jhgestor services.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus/stores/userdb"
	"github.com/jcpaschoal/jhgestor/business/sdk/migrate"
	"github.com/jcpaschoal/jhgestor/business/sdk/page"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config replicates the database settings of the services.
type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"jhgestor"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Auth struct {
		KeysFolder string `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "admin", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	if len(os.Args) < 2 {
		usage()
		return nil
	}

	cmd, args := os.Args[1], os.Args[2:]

	if cmd == "genkey" {
		return genKey(cfg.Auth.KeysFolder)
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	userBus := userbus.NewCore(userdb.NewStore(log, db))

	switch cmd {
	case "migrate":
		return runMigrate(ctx, db)
	case "seed":
		return runSeed(ctx, db)
	case "register":
		return runRegister(ctx, userBus, args)
	case "tenants":
		return runTenants(ctx, userBus, args)
	case "set-subscription":
		return runSetSubscription(ctx, userBus, args)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("Commands: migrate, seed, genkey, register, tenants, set-subscription")
}

func runMigrate(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := migrate.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	fmt.Println("migrations complete")
	return nil
}

func runSeed(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := migrate.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	fmt.Println("seed data complete")
	return nil
}

// genKey creates an x509 private/public key for auth tokens. The file is
// named after the key id.
func genKey(folder string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	if err := os.MkdirAll(folder, 0o700); err != nil {
		return fmt.Errorf("creating key folder: %w", err)
	}

	kid := uuid.NewString()
	path := filepath.Join(folder, kid+".pem")

	privateFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating private file: %w", err)
	}
	defer privateFile.Close()

	privateBlock := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	if err := pem.Encode(privateFile, &privateBlock); err != nil {
		return fmt.Errorf("encoding to private file: %w", err)
	}

	fmt.Printf("private key written: %s\nset AUTH_ACTIVE_KID=%s\n", path, kid)
	return nil
}

func runRegister(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("register", flag.ExitOnError)
	emailStr := cmd.String("email", "", "Owner email (Required)")
	passStr := cmd.String("password", "", "Owner password (Required)")
	nameStr := cmd.String("name", "", "Owner full name (Required)")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	email, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	usr, err := ub.Register(ctx, userbus.NewUser{
		Name:     n,
		Email:    *email,
		Password: *passStr,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("owner registered\nID: %s\nEmail: %s\nPlan: %s\nStatus: %s\n", usr.ID, usr.Email.Address, usr.Plan, usr.Status)
	return nil
}

func runTenants(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("tenants", flag.ExitOnError)
	statusStr := cmd.String("status", "", "Only owners in this status (ACTIVE, PAST_DUE, BLOCKED)")
	planStr := cmd.String("plan", "", "Only owners on this plan (FREE, PRO, ENTERPRISE)")
	pageStr := cmd.String("page", "1", "Page number")
	rowsStr := cmd.String("rows", "20", "Rows per page")
	cmd.Parse(args)

	var filter userbus.QueryFilter

	if *statusStr != "" {
		st, err := status.Parse(*statusStr)
		if err != nil {
			return fmt.Errorf("invalid status: %w", err)
		}
		filter.Status = &st
	}

	if *planStr != "" {
		pl, err := plan.Parse(*planStr)
		if err != nil {
			return fmt.Errorf("invalid plan: %w", err)
		}
		filter.Plan = &pl
	}

	pg, err := page.Parse(*pageStr, *rowsStr)
	if err != nil {
		return fmt.Errorf("invalid page: %w", err)
	}

	owners, err := ub.QueryOwners(ctx, filter, userbus.DefaultOrderBy, pg)
	if err != nil {
		return fmt.Errorf("query owners: %w", err)
	}

	total, err := ub.CountOwners(ctx, filter)
	if err != nil {
		return fmt.Errorf("count owners: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPLAN\tSTATUS\tCREATED")
	for _, o := range owners {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.Name, o.Email.Address, o.Plan, o.Status, o.CreatedAt.Format(time.DateOnly))
	}
	w.Flush()

	fmt.Printf("\npage %d, %d of %d tenants\n", pg.Number(), len(owners), total)
	return nil
}

// runSetSubscription overrides a tenant's plan or status by hand. The change
// is copied to every member of the tenant.
func runSetSubscription(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("set-subscription", flag.ExitOnError)
	userIDStr := cmd.String("user-id", "", "Owner UUID (Required)")
	planStr := cmd.String("plan", "", "New plan")
	statusStr := cmd.String("status", "", "New status")
	cmd.Parse(args)

	if *userIDStr == "" || (*planStr == "" && *statusStr == "") {
		cmd.PrintDefaults()
		return fmt.Errorf("missing user id or change")
	}

	userID, err := uuid.Parse(*userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user uuid: %w", err)
	}

	var us userbus.UpdateSubscription

	if *planStr != "" {
		pl, err := plan.Parse(*planStr)
		if err != nil {
			return fmt.Errorf("invalid plan: %w", err)
		}
		us.Plan = &pl
	}

	if *statusStr != "" {
		st, err := status.Parse(*statusStr)
		if err != nil {
			return fmt.Errorf("invalid status: %w", err)
		}
		us.Status = &st
	}

	owner, err := ub.QueryByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("query owner: %w", err)
	}

	if !owner.IsOwner() {
		return fmt.Errorf("user %s belongs to tenant %s, use the owner", owner.ID, owner.OwnerID)
	}

	team, err := ub.QueryByOwner(ctx, owner.ID)
	if err != nil {
		return fmt.Errorf("query team: %w", err)
	}

	for _, usr := range team {
		if _, err := ub.UpdateSubscription(ctx, usr, us); err != nil {
			return fmt.Errorf("update %s: %w", usr.ID, err)
		}
	}

	fmt.Printf("subscription updated for %d users of tenant %s\n", len(team), owner.ID)
	return nil
}
