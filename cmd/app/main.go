package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"desafioconcurso-go/internal/auth"
	"desafioconcurso-go/internal/config"
	"desafioconcurso-go/internal/core"
	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
	"desafioconcurso-go/internal/prefs"
)

// app bundles the wired services for the lifetime of the process. A UI layer
// would hold exactly this set; headless, the binary keeps the session and the
// live forum feed running until it is signaled to stop.
type app struct {
	logger  *zap.Logger
	session *core.SessionStore
	gate    *core.NavigationGate
	quiz    *core.QuizService
	forum   *core.ForumService
	social  *core.SocialService

	feedCtx    context.Context
	feedCancel context.CancelFunc
	feedSub    *db.Subscription
}

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, relying on environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)
	defer logger.Sync()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	clients, err := db.Init(initCtx, cfg)
	cancelInit()
	if err != nil {
		logger.Fatal("failed to initialize Firebase clients", zap.Error(err))
	}

	authClient, err := auth.NewClient(context.Background(), cfg.FirebaseWebAPIKey)
	if err != nil {
		logger.Fatal("failed to initialize auth client", zap.Error(err))
	}

	prefsPath := cfg.PrefsPath
	if prefsPath == "" {
		prefsPath, err = prefs.DefaultPath()
		if err != nil {
			logger.Fatal("failed to resolve prefs path", zap.Error(err))
		}
	}
	prefStore, err := prefs.NewFileStore(prefsPath)
	if err != nil {
		logger.Fatal("failed to open prefs store", zap.String("path", prefsPath), zap.Error(err))
	}

	profileRepo := db.NewFirestoreProfileRepository(clients.Firestore)
	postRepo := db.NewFirestorePostRepository(clients.Firestore)
	answerRepo := db.NewFirestoreAnswerRepository(clients.Firestore)
	requestRepo := db.NewFirestoreFriendRequestRepository(clients.Firestore)
	friendshipRepo := db.NewFirestoreFriendshipRepository(clients.Firestore)
	questionRepo := db.NewFirestoreQuestionRepository(clients.Firestore)

	session := core.NewSessionStore(authClient, profileRepo, logger)
	a := &app{
		logger:  logger,
		session: session,
		gate:    core.NewNavigationGate(session),
		quiz:    core.NewQuizService(questionRepo, answerRepo, prefStore, logger),
		forum:   core.NewForumService(postRepo, profileRepo, logger),
		social:  core.NewSocialService(profileRepo, requestRepo, friendshipRepo, answerRepo, logger),
	}

	appCtx, cancelApp := context.WithCancel(context.Background())
	session.Start(appCtx)

	removeWatch := a.gate.Watch(func(route core.Route) {
		logger.Info("navigation route changed", zap.Stringer("route", route))
		switch route {
		case core.RouteAuthenticated:
			a.openFeed(appCtx)
		default:
			a.closeFeed()
		}
	})

	logger.Info("application core started",
		zap.String("env", cfg.AppEnv),
		zap.String("project", cfg.FirebaseProjectID))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	removeWatch()
	a.closeFeed()
	session.Close()
	cancelApp()
	if err := clients.Close(); err != nil {
		logger.Warn("failed to close Firestore client", zap.Error(err))
	}
}

// openFeed starts the live forum feed for the signed-in session.
func (a *app) openFeed(parent context.Context) {
	if a.feedSub != nil {
		return
	}
	a.feedCtx, a.feedCancel = context.WithCancel(parent)
	sub, err := a.forum.WatchFeed(a.feedCtx, func(posts []*models.Post, err error) {
		if err != nil {
			a.logger.Warn("forum feed snapshot failed", zap.Error(err))
			return
		}
		a.logger.Info("forum feed updated", zap.Int("posts", len(posts)))
	})
	if err != nil {
		a.logger.Warn("failed to open forum feed", zap.Error(err))
		a.feedCancel()
		a.feedCtx, a.feedCancel = nil, nil
		return
	}
	a.feedSub = sub
}

func (a *app) closeFeed() {
	if a.feedSub == nil {
		return
	}
	a.feedSub.Stop()
	a.feedCancel()
	a.feedSub, a.feedCtx, a.feedCancel = nil, nil, nil
}

// newLogger builds a production logger, switched to the development config
// outside production.
func newLogger(env string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return logger
}
