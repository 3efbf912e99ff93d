package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register the pprof handlers
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/submission"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	fssvc "github.com/trezcool/kazi/services/filestore"
	logsvc "github.com/trezcool/kazi/services/logger"
	schedsvc "github.com/trezcool/kazi/services/scheduler"
	"github.com/trezcool/kazi/storage/database"
	sqlxrepos "github.com/trezcool/kazi/storage/database/sqlx"
)

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

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	fstore, err := setUpFileStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	assignRepo := sqlxrepos.NewAssignmentRepository(db)
	subRepo := sqlxrepos.NewSubmissionRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	assignSvc := assignment.NewService(db, assignRepo, usrSvc, fstore, mailSvc, logger)
	subSvc := submission.NewService(db, subRepo, assignRepo, usrSvc, fstore)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Deadline Reminder Scans

	scheduler := schedsvc.NewScheduler(logger)
	err = scheduler.AddJob("@every 1m", "deadline reminders", func() {
		if err := assignSvc.RemindDueSoon(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("deadline reminder scan: %v", err), err)
		}
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("scheduling deadline reminders: %v", err), err)
	}
	scheduler.Start()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			AssignmentSvc: assignSvc,
			SubmissionSvc: subSvc,
			Validate:      validate,
			Translator:    translator,
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

		// let a running reminder scan finish
		<-scheduler.Stop().Done()

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

func setUpDB(conf *core.Config) (*database.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB.DB); err != nil {
		return nil, err
	}
	return db, nil
}

// setUpFileStore picks the blob backend the same way the mailer is picked:
// process memory in DEV, the OSS bucket everywhere else.
func setUpFileStore(conf *core.Config) (core.FileStore, error) {
	if conf.Debug {
		return fssvc.NewMemStore(), nil
	}
	return fssvc.NewOSSStore(conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
