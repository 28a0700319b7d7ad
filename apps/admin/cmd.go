package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/role"
	"github.com/trezcool/sanaa/storage/database"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
	mongodb "github.com/trezcool/sanaa/storage/database/mongo"
	sqlxrepos "github.com/trezcool/sanaa/storage/database/sqlx"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	out  io.Writer

	// roleSvc overrides service construction in tests
	roleSvc *role.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  addadmin -email EMAIL    - grant the admin role to an email")
	fmt.Fprintln(cli.out, "  removeadmin -email EMAIL - revoke the admin role from an email")
	fmt.Fprintln(cli.out, "  listadmins               - list all admin roles")
	fmt.Fprintln(cli.out, "  migrate                  - create the database if needed and run migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addEmail := addCmd.String("email", "", "The email to grant the admin role to.")

	removeCmd := flag.NewFlagSet("removeadmin", flag.ExitOnError)
	removeEmail := removeCmd.String("email", "", "The email to revoke the admin role from.")

	switch args[1] {
	case "addadmin":
		if err := addCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addEmail == "" {
			addCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addEmail)
	case "removeadmin":
		if err := removeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *removeEmail == "" {
			removeCmd.Usage()
			return errHelp
		}
		return cli.removeAdmin(*removeEmail)
	case "listadmins":
		return cli.listAdmins()
	case "migrate":
		return cli.migrate()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) addAdmin(email string) error {
	svc, cleanup, err := cli.roleService()
	if err != nil {
		return err
	}
	defer cleanup()

	nr := role.NewRole{Email: email}
	if err = nr.Validate(); err != nil {
		return err
	}
	rl, err := svc.Add(context.Background(), nr, role.SystemActor)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin role granted to %s\n", rl.Email)
	return nil
}

func (cli *commandLine) removeAdmin(email string) error {
	svc, cleanup, err := cli.roleService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err = svc.Remove(context.Background(), email, role.SystemActor); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin role revoked from %s\n", email)
	return nil
}

func (cli *commandLine) listAdmins() error {
	svc, cleanup, err := cli.roleService()
	if err != nil {
		return err
	}
	defer cleanup()

	roles, err := svc.QueryAll(context.Background())
	if err != nil {
		return err
	}
	for _, rl := range roles {
		fmt.Fprintf(cli.out, "%s\t(added by %s on %s)\n", rl.Email, rl.AddedBy, rl.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (cli *commandLine) migrate() error {
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return database.Migrate(db)
}

func (cli *commandLine) roleService() (*role.Service, func(), error) {
	if cli.roleSvc != nil {
		return cli.roleSvc, func() {}, nil
	}

	var (
		roleRepo     role.Repository
		activityRepo activity.Repository
		cleanup      = func() {}
	)
	switch cli.conf.Database.Engine {
	case "mongo":
		db, err := mongodb.Open(context.Background(), cli.conf)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = db.Client().Disconnect(context.Background()) }
		roleRepo = mongodb.NewRoleRepository(db)
		activityRepo = mongodb.NewActivityRepository(db)
	case "inmem":
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		roleRepo = inmemdb.NewRoleRepository(db)
		activityRepo = inmemdb.NewActivityRepository(db)
	default: // postgres
		db, err := database.Open(cli.conf)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = db.Close() }
		roleRepo = sqlxrepos.NewRoleRepository(db)
		activityRepo = sqlxrepos.NewActivityRepository(db)
	}

	svc := role.NewService(roleRepo, activity.NewService(activityRepo), stdLogger{logger}, cli.conf)
	return svc, cleanup, nil
}
