package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/restbound/restbound/internal/cli/config"
	"github.com/restbound/restbound/internal/cli/ui"
	"github.com/restbound/restbound/relation"
	"github.com/restbound/restbound/schema"
	"github.com/restbound/restbound/transport/httptransport"
	"github.com/restbound/restbound/transport/rediscache"
	"github.com/restbound/restbound/transport/sqltransport"
)

var (
	getBaseURL   string
	getAuthToken string
	getJWTSecret string
	getDBURL     string
	getDBDriver  string
	getRedisAddr string
	getMembers   []string
)

var getCmd = &cobra.Command{
	Use:   "get <resource> [id]",
	Short: "Resolve members of a resource lazily",
	Long: `Resolve one or more members of a resource. Members answered by locally
known fields cost no I/O; at most one remote fetch happens per resource,
and only when a member actually needs remote data.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := builtinRegistry()
		if err != nil {
			return err
		}

		desc, ok := reg.Get(args[0])
		if err := requireDescriptor(reg, args[0], ok); err != nil {
			return err
		}

		id, err := resolveID(args)
		if err != nil {
			return err
		}

		transport, cleanup, err := buildTransport()
		if err != nil {
			return err
		}
		defer cleanup()

		proxy := relation.NewProxy(desc, map[string]any{"id": id}, transport)
		ctx := cmd.Context()

		if len(getMembers) == 0 {
			return printRecord(ctx, proxy)
		}
		for _, member := range getMembers {
			if err := printMember(ctx, proxy, member); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&getBaseURL, "base-url", "", "HTTP API base URL")
	getCmd.Flags().StringVar(&getAuthToken, "token", "", "static bearer token for the HTTP API")
	getCmd.Flags().StringVar(&getJWTSecret, "jwt-secret", "", "HMAC secret for per-request JWT auth")
	getCmd.Flags().StringVar(&getDBURL, "db", "", "database URL (fetches rows directly instead of HTTP)")
	getCmd.Flags().StringVar(&getDBDriver, "driver", "", "database driver: pgx or sqlite3")
	getCmd.Flags().StringVar(&getRedisAddr, "redis", "", "redis address for the record cache")
	getCmd.Flags().StringArrayVarP(&getMembers, "member", "m", nil, "member to resolve (repeatable)")
}

func requireDescriptor(reg *schema.Registry, name string, ok bool) error {
	if ok {
		return nil
	}
	if similar := ui.Suggest(name, reg.List()); len(similar) > 0 {
		return fmt.Errorf("unknown resource %q (did you mean %s?)", name, strings.Join(similar, ", "))
	}
	names := reg.List()
	sort.Strings(names)
	return fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(names, ", "))
}

// resolveID takes the id from argv, prompting for it when omitted. Numeric
// ids stay numeric so SQL parameters and JSON compare naturally.
func resolveID(args []string) (any, error) {
	raw := ""
	if len(args) > 1 {
		raw = args[1]
	} else {
		prompt := &survey.Input{
			Message: fmt.Sprintf("%s id:", args[0]),
		}
		if err := survey.AskOne(prompt, &raw, survey.WithValidator(survey.Required)); err != nil {
			return nil, err
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	return raw, nil
}

// buildTransport assembles the transport from flags, falling back to the
// restbound.yml config for anything not given on the command line.
func buildTransport() (relation.Transport, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if getBaseURL == "" {
		getBaseURL = cfg.Transport.BaseURL
	}
	if getAuthToken == "" {
		getAuthToken = cfg.Transport.AuthToken
	}
	if getJWTSecret == "" {
		getJWTSecret = cfg.Transport.JWTSecret
	}
	if getDBURL == "" {
		getDBURL = cfg.Database.URL
	}
	if getDBDriver == "" {
		getDBDriver = cfg.Database.Driver
	}
	if getRedisAddr == "" {
		getRedisAddr = cfg.Redis.Addr
	}

	var transport relation.Transport
	cleanup := func() {}

	switch {
	case getDBURL != "":
		db, err := sql.Open(getDBDriver, getDBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		opts := []sqltransport.Option{}
		if getDBDriver == "sqlite3" {
			opts = append(opts, sqltransport.WithDialect(sqltransport.DialectSQLite))
		}
		transport = sqltransport.New(db, opts...)
		cleanup = func() { db.Close() }

	case getBaseURL != "":
		opts := []httptransport.Option{}
		switch {
		case getJWTSecret != "":
			opts = append(opts, httptransport.WithAuth(
				httptransport.NewJWTAuth(getJWTSecret, 5*time.Minute, map[string]any{"sub": "restbound-cli"})))
		case getAuthToken != "":
			opts = append(opts, httptransport.WithAuth(httptransport.BearerToken(getAuthToken)))
		}
		transport = httptransport.New(getBaseURL, opts...)

	default:
		return nil, nil, fmt.Errorf("no backend configured: pass --base-url or --db, or set them in restbound.yml")
	}

	if getRedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: getRedisAddr})
		transport = rediscache.New(transport, client,
			rediscache.WithTTL(time.Duration(cfg.Redis.TTLSeconds)*time.Second),
			rediscache.WithPrefix(cfg.Redis.Prefix))
		prev := cleanup
		cleanup = func() { client.Close(); prev() }
	}

	return transport, cleanup, nil
}

// printRecord fetches the full record and prints its fields
func printRecord(ctx context.Context, proxy *relation.Proxy) error {
	record, err := proxy.Fetch(ctx)
	if err != nil {
		return err
	}

	heading := color.New(color.FgGreen, color.Bold)
	heading.Printf("%s/%v\n", proxy.Target().Name(), proxy.Identity().ID())

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, record[k])
	}
	return nil
}

// printMember resolves a single member: declared single relations become
// child proxies, declared collections are materialized, and everything else
// goes through plain member resolution.
func printMember(ctx context.Context, proxy *relation.Proxy, member string) error {
	name := color.New(color.FgCyan)
	name.Printf("%s: ", member)

	field, declared := proxy.Target().LazyField(member)
	if declared && field.Kind == schema.KindSingle {
		child, err := proxy.Relation(ctx, member)
		if err != nil {
			return err
		}
		if child == nil {
			fmt.Println("null")
			return nil
		}
		fmt.Println(child.String())
		return nil
	}
	if declared && field.Kind == schema.KindCollection {
		coll, err := proxy.Collection(ctx, member)
		if err != nil {
			return err
		}
		elems, err := coll.Materialize(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d %s\n", len(elems), coll.Target().Name())
		for _, e := range elems {
			fmt.Printf("  - %v\n", e.Identity().ID())
		}
		return nil
	}

	v, err := proxy.Get(ctx, member)
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", v)
	return nil
}
