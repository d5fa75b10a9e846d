package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/info-321/React-Email-Dashboard/config"
	"github.com/info-321/React-Email-Dashboard/dep"
	"github.com/info-321/React-Email-Dashboard/entity"
	"github.com/info-321/React-Email-Dashboard/handler"
	"github.com/info-321/React-Email-Dashboard/middleware"
	"github.com/info-321/React-Email-Dashboard/pkg/router"
	"github.com/info-321/React-Email-Dashboard/pkg/service"
	"github.com/info-321/React-Email-Dashboard/repo"
)

type server struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	notionClient dep.NotionClient
	gmailFactory *dep.GmailFactory

	emailRepo   *repo.EmailListRepo
	sampleRepo  *repo.SampleRepo
	reportCache repo.ReportCache

	// api handlers
	authHandler      *handler.AuthHandler
	emailHandler     *handler.EmailHandler
	mailboxHandler   *handler.MailboxHandler
	analyticsHandler *handler.AnalyticsHandler
}

func main() {
	s := new(server)
	if err := service.Run(s); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (s *server) Init() error {
	opt := config.NewOptions()

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		opt.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	if serverPort := os.Getenv("PORT"); serverPort != "" {
		if port, err := strconv.Atoi(serverPort); err == nil {
			opt.Port = port
		}
	}

	s.opt = opt

	return nil
}

func (s *server) Start() error {
	var err error

	// ====== init logger ===== //

	s.ctx = initZeroLog(context.Background(), s.opt.LogLevel)

	// ===== init config ===== //

	s.cfg = config.NewConfig()
	if err = s.cfg.Load(s.ctx, s.opt.ConfigPath); err != nil {
		log.Ctx(s.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init deps ===== //

	s.notionClient = dep.NewNotionClient(s.ctx, s.cfg.Notion)
	if !s.notionClient.Configured() {
		log.Ctx(s.ctx).Warn().Msg("notion is not configured, analytics will use sample data")
	}

	s.gmailFactory = dep.NewGmailFactory(s.cfg.Gmail)

	// ===== init repos ===== //

	s.emailRepo = repo.NewEmailListRepo(s.cfg.EmailStore)
	if err = s.emailRepo.Bootstrap(); err != nil {
		log.Ctx(s.ctx).Error().Msgf("bootstrap email store failed, err: %v", err)
		return err
	}

	s.sampleRepo, err = repo.NewSampleRepo()
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init sample repo failed, err: %v", err)
		return err
	}

	s.reportCache = repo.NewReportCache(time.Duration(s.cfg.AnalyticsCacheTTLSeconds) * time.Second)

	// ===== init handlers ===== //

	s.authHandler = handler.NewAuthHandler(s.cfg)
	s.emailHandler = handler.NewEmailHandler(s.emailRepo)
	s.mailboxHandler = handler.NewMailboxHandler(s.gmailFactory, s.emailRepo)
	s.analyticsHandler = handler.NewAnalyticsHandler(
		s.cfg, s.notionClient, s.gmailFactory, s.sampleRepo, s.emailRepo, s.reportCache)

	// ===== start server ===== //

	go func() {
		addr := fmt.Sprintf(":%d", s.opt.Port)

		log.Info().Msgf("starting HTTP server at %s", addr)

		c := cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders: []string{"*"},
		})

		httpServer := &http.Server{
			BaseContext: func(_ net.Listener) context.Context {
				return s.ctx
			},
			Addr:    addr,
			Handler: c.Handler(middleware.Log(s.registerRoutes())),
		}
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fail to start HTTP server, err: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop() error {
	if s.notionClient != nil {
		if err := s.notionClient.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close notion client failed, err: %v", err)
			return err
		}
	}

	return nil
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct{}

func (s *server) registerRoutes() http.Handler {
	r := &router.HttpRouter{
		Router: mux.NewRouter(),
	}

	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathHealthCheck,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(HealthCheckRequest),
			Res: new(HealthCheckResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return nil
			},
		},
	})

	// login
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathLogin,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.LoginRequest),
			Res: new(handler.LoginResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.authHandler.Login(ctx, req.(*handler.LoginRequest), res.(*handler.LoginResponse))
			},
		},
	})

	// get_emails
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathEmails,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetEmailsRequest),
			Res: new(handler.GetEmailsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.emailHandler.GetEmails(ctx, req.(*handler.GetEmailsRequest), res.(*handler.GetEmailsResponse))
			},
		},
	})

	// add_email
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathEmails,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.AddEmailRequest),
			Res: new(handler.AddEmailResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.emailHandler.AddEmail(ctx, req.(*handler.AddEmailRequest), res.(*handler.AddEmailResponse))
			},
		},
	})

	// remove_email
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathEmails,
		Method: http.MethodDelete,
		Handler: router.Handler{
			Req: new(handler.RemoveEmailRequest),
			Res: new(handler.RemoveEmailResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.emailHandler.RemoveEmail(ctx, req.(*handler.RemoveEmailRequest), res.(*handler.RemoveEmailResponse))
			},
		},
	})

	// mailbox_overview
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathMailboxOverview,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetOverviewRequest),
			Res: new(handler.GetOverviewResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.mailboxHandler.GetOverview(ctx, req.(*handler.GetOverviewRequest), res.(*handler.GetOverviewResponse))
			},
		},
	})

	// mailbox_messages
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathMailboxMessages,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetMessagesRequest),
			Res: new(handler.GetMessagesResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.mailboxHandler.GetMessages(ctx, req.(*handler.GetMessagesRequest), res.(*handler.GetMessagesResponse))
			},
		},
	})

	// mailbox_bulk_modify
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathMailboxBulkModify,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.BulkModifyRequest),
			Res: new(handler.BulkModifyResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.mailboxHandler.BulkModify(ctx, req.(*handler.BulkModifyRequest), res.(*handler.BulkModifyResponse))
			},
		},
	})

	// mailbox_send
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathMailboxSend,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.SendMessageRequest),
			Res: new(handler.SendMessageResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.mailboxHandler.SendMessage(ctx, req.(*handler.SendMessageRequest), res.(*handler.SendMessageResponse))
			},
		},
	})

	// mailbox_attachment
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:       config.PathMailboxAttachment,
		Method:     http.MethodGet,
		RawHandler: s.mailboxHandler.DownloadAttachment,
	})

	// analytics
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathAnalytics,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetAnalyticsRequest),
			Res: new(entity.AnalyticsReport),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.analyticsHandler.GetAnalytics(ctx, req.(*handler.GetAnalyticsRequest), res.(*entity.AnalyticsReport))
			},
		},
	})

	return r
}

func initZeroLog(ctx context.Context, level string) context.Context {
	// use unix time
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// set log level
	var logLevel zerolog.Level
	switch strings.ToLower(level) {
	case zerolog.LevelDebugValue:
		logLevel = zerolog.DebugLevel
	case zerolog.LevelInfoValue:
		logLevel = zerolog.InfoLevel
	case zerolog.LevelWarnValue:
		logLevel = zerolog.WarnLevel
	case zerolog.LevelErrorValue:
		logLevel = zerolog.ErrorLevel
	case zerolog.LevelFatalValue:
		logLevel = zerolog.FatalLevel
	default:
		logLevel = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// show caller: github.com/rs/zerolog#add-file-and-line-number-to-log
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		return fmt.Sprintf("%s:%d", short, line)
	}
	log.Logger = log.With().Caller().Logger()

	ctx = log.Logger.WithContext(ctx)
	return ctx
}
