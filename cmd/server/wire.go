//go:build wireinject
// +build wireinject

package main

import (
	"estate_market_backend/internal/admin"
	"estate_market_backend/internal/app"
	"estate_market_backend/internal/booking"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/conversation"
	"estate_market_backend/internal/favorite"
	"estate_market_backend/internal/firebase"
	"estate_market_backend/internal/history"
	"estate_market_backend/internal/jobs"
	"estate_market_backend/internal/middleware"
	"estate_market_backend/internal/platform/database"
	platformes "estate_market_backend/internal/platform/elasticsearch"
	"estate_market_backend/internal/platform/logger"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/realtime"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/shared"
	"estate_market_backend/internal/storage"
	"estate_market_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform
		logger.New,
		database.NewGORM,
		firebase.NewFirebaseService,
		wire.Bind(new(middleware.TokenVerifier), new(*firebase.FirebaseService)),
		storage.NewBucket,
		storage.NewService,
		wire.Bind(new(property.ImageStore), new(*storage.Service)),
		platformes.NewClient,

		// Users
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Properties and reviews
		property.NewGORMRepository,
		property.NewOwnerLookup,
		wire.Bind(new(shared.PropertyLookup), new(*property.OwnerLookup)),
		property.NewIndexer,
		review.NewGORMRepository,
		review.NewService,
		wire.Bind(new(review.Service), new(*review.ServiceImplementation)),
		review.NewHandler,
		property.NewService,
		wire.Bind(new(property.Service), new(*property.ServiceImplementation)),
		wire.Bind(new(favorite.PropertyLister), new(*property.ServiceImplementation)),
		property.NewHandler,

		// History
		history.NewGORMRepository,
		history.NewService,
		wire.Bind(new(history.Service), new(*history.ServiceImplementation)),
		wire.Bind(new(property.HistoryRecorder), new(*history.ServiceImplementation)),
		wire.Bind(new(jobs.SearchHistoryPruner), new(*history.ServiceImplementation)),
		history.NewHandler,
		jobs.NewHistoryPruneJob,

		// Bookings and favorites
		booking.NewGORMRepository,
		booking.NewService,
		wire.Bind(new(booking.Service), new(*booking.ServiceImplementation)),
		booking.NewHandler,
		favorite.NewGORMRepository,
		favorite.NewService,
		wire.Bind(new(favorite.Service), new(*favorite.ServiceImplementation)),
		favorite.NewHandler,

		// Messaging
		realtime.NewHub,
		wire.Bind(new(conversation.Notifier), new(*realtime.Hub)),
		realtime.NewHandler,
		conversation.NewGORMRepository,
		conversation.NewService,
		wire.Bind(new(conversation.Service), new(*conversation.ServiceImplementation)),
		conversation.NewHandler,

		// Back-office
		admin.NewGORMStatsRepository,
		admin.NewHandler,

		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
