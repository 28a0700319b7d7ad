package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/sanaa/apps/api/echo"
	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/auth"
	"github.com/trezcool/sanaa/core/notification"
	"github.com/trezcool/sanaa/core/payment"
	"github.com/trezcool/sanaa/core/role"
	"github.com/trezcool/sanaa/core/student"
	authsvc "github.com/trezcool/sanaa/services/auth"
	emailsvc "github.com/trezcool/sanaa/services/email"
	logsvc "github.com/trezcool/sanaa/services/logger"
	"github.com/trezcool/sanaa/storage/blob"
	inmemblob "github.com/trezcool/sanaa/storage/blob/inmem"
	ossblob "github.com/trezcool/sanaa/storage/blob/oss"
	"github.com/trezcool/sanaa/storage/database"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
	mongodb "github.com/trezcool/sanaa/storage/database/mongo"
	sqlxrepos "github.com/trezcool/sanaa/storage/database/sqlx"
)

type repositories struct {
	student      student.Repository
	payment      payment.Repository
	role         role.Repository
	notification notification.Repository
	activity     activity.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	repos, cleanup, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer cleanup()

	blobStore, err := setUpBlobStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up blob storage: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	notifSvc := notification.NewService(repos.notification)
	activitySvc := activity.NewService(repos.activity)
	roleSvc := role.NewService(repos.role, activitySvc, logger, conf)
	studentSvc := student.NewService(repos.student, blobStore, notifSvc, activitySvc, mailSvc, logger, conf)
	paymentSvc := payment.NewService(repos.payment, studentSvc, notifSvc, activitySvc, logger)

	broker := auth.NewBroker(roleSvc, logger)
	unsub := broker.OnAuthChange(func(usr *auth.User) {
		if usr == nil {
			logger.Info("session closed")
			return
		}
		logger.Info(fmt.Sprintf("session opened: %s (admin=%t)", usr.Email, usr.IsAdmin))
	})
	defer unsub()

	verifier := authsvc.NewGoogleVerifier(conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			StudentSvc:  studentSvc,
			PaymentSvc:  paymentSvc,
			RoleSvc:     roleSvc,
			NotifSvc:    notifSvc,
			ActivitySvc: activitySvc,
			AuthBroker:  broker,
			Verifier:    verifier,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepositories opens the configured storage engine and builds the
// repository set on it.
func setUpRepositories(conf *core.Config) (repositories, func(), error) {
	switch conf.Database.Engine {
	case "mongo":
		db, err := mongodb.Open(context.Background(), conf)
		if err != nil {
			return repositories{}, nil, err
		}
		cleanup := func() { _ = db.Client().Disconnect(context.Background()) }
		return repositories{
			student:      mongodb.NewStudentRepository(db),
			payment:      mongodb.NewPaymentRepository(db),
			role:         mongodb.NewRoleRepository(db),
			notification: mongodb.NewNotificationRepository(db),
			activity:     mongodb.NewActivityRepository(db),
		}, cleanup, nil

	case "inmem":
		db, err := inmemdb.Open()
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			student:      inmemdb.NewStudentRepository(db),
			payment:      inmemdb.NewPaymentRepository(db),
			role:         inmemdb.NewRoleRepository(db),
			notification: inmemdb.NewNotificationRepository(db),
			activity:     inmemdb.NewActivityRepository(db),
		}, func() {}, nil

	default: // postgres
		if err := database.CreateIfNotExist(conf); err != nil {
			return repositories{}, nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return repositories{}, nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return repositories{}, nil, err
		}
		cleanup := func() { _ = db.Close() }
		return repositories{
			student:      sqlxrepos.NewStudentRepository(db),
			payment:      sqlxrepos.NewPaymentRepository(db),
			role:         sqlxrepos.NewRoleRepository(db),
			notification: sqlxrepos.NewNotificationRepository(db),
			activity:     sqlxrepos.NewActivityRepository(db),
		}, cleanup, nil
	}
}

// setUpBlobStorage uses OSS when configured and an in-memory store otherwise
// so local dev needs no cloud credentials.
func setUpBlobStorage(conf *core.Config) (blob.Storage, error) {
	if conf.OSS.Endpoint != "" {
		return ossblob.NewService(conf)
	}
	return inmemblob.NewService(), nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
