package main

import (
	"rentals/internal/audit"
	bookinghandler "rentals/internal/bookings/handler"
	bookingrepo "rentals/internal/bookings/repository"
	bookingservice "rentals/internal/bookings/service"
	bookingvalidator "rentals/internal/bookings/validator"
	"rentals/internal/events"
	propertyhandler "rentals/internal/properties/handler"
	propertyrepo "rentals/internal/properties/repository"
	propertyservice "rentals/internal/properties/service"
	propertyvalidator "rentals/internal/properties/validator"
	"rentals/pkg/app"
	"rentals/pkg/config"
	"rentals/pkg/kafka"
	kafka_config "rentals/pkg/kafka/config"
	kafka_middleware "rentals/pkg/kafka/middleware"
)

const ServiceName = "rentals"

type services struct {
	properties propertyservice.PropertyService
	bookings   bookingservice.BookingService
	events     audit.EventRepository
	publisher  events.Publisher
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Rentals service")
	svc := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := svc.publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(
		propertyhandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		propertyhandler.NewPropertyHandler(svc.properties, cfg.Log),
		bookinghandler.NewBookingHandler(svc.bookings, cfg.Log),
		audit.NewHandler(svc.events, svc.bookings, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) services {
	propertyRepo := propertyrepo.NewMongoPropertyRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	publisher := initPublisher(cfg)

	propertyService := propertyservice.NewPropertyService(
		propertyRepo,
		bookingRepo,
		propertyvalidator.NewPropertyValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		propertyRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return services{
		properties: propertyService,
		bookings:   bookingService,
		events:     audit.NewMongoEventRepository(cfg),
		publisher:  publisher,
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, lifecycle events will not be published")
		return events.NewNopPublisher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.LifecycleTopic, cfg.LifecycleDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.NewMetrics().ProducerMiddleware())
	}

	cfg.Log.Info("Kafka publisher initialized", "topic", cfg.LifecycleTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
