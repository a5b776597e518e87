package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/cancel_booking"
	confirmCompletionHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/confirm_completion"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_customer_bookings"
	getDeliveryHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_delivery"
	getProviderBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_provider_bookings"
	getRescheduleHistoryHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_reschedule_history"
	getRescheduleOptionsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_reschedule_options"
	markDeliveredHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/mark_delivered"
	openDisputeHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/open_dispute"
	paymentCallbackHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/payment_callback"
	providerAvailabilityHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/provider_availability"
	recordCashCollectionHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/record_cash_collection"
	rescheduleBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/reschedule_booking"
	serviceWindowsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/service_windows"
	updateBookingStatusHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/config"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	deliveryRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/delivery"
	slotRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/slot"
	catalogServiceClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	availabilityService "github.com/m04kA/SMC-MarketplaceService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-MarketplaceService/internal/service/bookings"
	deliveriesService "github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries"
	createBookingUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_available_slots"
	getRescheduleOptionsUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_reschedule_options"
	paymentCallbackUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/payment_callback"
	rescheduleBookingUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceService/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-MarketplaceService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент каталога услуг
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (CatalogService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		slotRepository         *slotRepo.Repository
		availabilityRepository *availabilityRepo.Repository
		deliveryRepository     *deliveryRepo.Repository
	)

	// Интерфейс transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		slotRepository = slotRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		deliveryRepository = deliveryRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		slotRepository = slotRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		deliveryRepository = deliveryRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		catalogClient,
		txMgr,
		log,
	)
	deliverySvc := deliveriesService.NewService(
		bookingRepository,
		deliveryRepository,
		catalogClient,
		txMgr,
		log,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		catalogClient,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		slotRepository,
		availabilityRepository,
		catalogClient,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		catalogClient,
		txMgr,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		catalogClient,
		txMgr,
		log,
	)
	getRescheduleOptionsUseCase := getRescheduleOptionsUC.NewUseCase(
		bookingRepository,
		slotRepository,
		getAvailableSlotsUseCase,
		catalogClient,
		log,
	)
	paymentCallbackUseCase := paymentCallbackUC.NewUseCase(
		bookingRepository,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getRescheduleOptions := getRescheduleOptionsHandler.NewHandler(getRescheduleOptionsUseCase, log)
	getRescheduleHistory := getRescheduleHistoryHandler.NewHandler(rescheduleBookingUseCase, log)
	markDelivered := markDeliveredHandler.NewHandler(deliverySvc, log)
	confirmCompletion := confirmCompletionHandler.NewHandler(deliverySvc, log)
	openDispute := openDisputeHandler.NewHandler(deliverySvc, log)
	getDelivery := getDeliveryHandler.NewHandler(deliverySvc, log)
	recordCashCollection := recordCashCollectionHandler.NewHandler(deliverySvc, log)
	providerAvailability := providerAvailabilityHandler.NewHandler(availabilitySvc, log)
	serviceWindows := serviceWindowsHandler.NewHandler(availabilitySvc, log)
	paymentCallback := paymentCallbackHandler.NewHandler(paymentCallbackUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}
	r.Use(middleware.Logging(log))

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// ============================================================
	// PUBLIC ROUTES (X-User-ID опционален)
	// ============================================================

	// Доступные слоты услуги на дату
	api.HandleFunc("/services/{serviceId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Рабочие окна исполнителя
	api.HandleFunc("/providers/{providerId}/availability", providerAvailability.HandleList).Methods(http.MethodGet)

	// Callback платёжного шлюза (внутренний endpoint)
	api.HandleFunc("/payments/callback", paymentCallback.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// --- Переносы ---
	api.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/reschedule/options", getRescheduleOptions.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/reschedule/history", getRescheduleHistory.Handle).Methods(http.MethodGet)

	// --- Выполнение услуги ---
	api.HandleFunc("/bookings/{bookingId}/delivery", markDelivered.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/delivery", getDelivery.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/delivery/confirm", confirmCompletion.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/delivery/dispute", openDispute.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/cash-collections", recordCashCollection.Handle).Methods(http.MethodPost)

	// --- Управление исполнителем (для операторов) ---
	api.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/availability", providerAvailability.HandleCreate).Methods(http.MethodPost)
	api.HandleFunc("/providers/{providerId}/availability/{windowId}", providerAvailability.HandleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/providers/{providerId}/availability/{windowId}", providerAvailability.HandleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/services/{serviceId}/time-slots", serviceWindows.HandleCreate).Methods(http.MethodPost)
	api.HandleFunc("/services/{serviceId}/time-slots/{windowId}", serviceWindows.HandleDelete).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
