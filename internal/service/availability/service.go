package availability

import (
	"context"
	"errors"
	"fmt"

	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/availability/models"
)

// Service сервис управления расписанием: рабочие окна исполнителей
// и фиксированные окна услуг, от которых генерируются слоты
type Service struct {
	availabilityRepo AvailabilityRepository
	catalogClient    CatalogServiceClient
	logger           Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	availabilityRepo AvailabilityRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		catalogClient:    catalogClient,
		logger:           logger,
	}
}

// ListWindows возвращает все рабочие окна исполнителя.
// Публичная операция: расписание видно любому клиенту.
func (s *Service) ListWindows(ctx context.Context, providerID int64) (*models.WindowListResponse, error) {
	s.logger.Info("ListWindows: fetching windows for provider=%d", providerID)

	windows, err := s.availabilityRepo.GetWindowsByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("ListWindows: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListWindows - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWindowList(windows), nil
}

// CreateWindow создает рабочее окно исполнителя на день недели.
// Доступно только операторам исполнителя. На день недели допускается одно окно.
func (s *Service) CreateWindow(ctx context.Context, providerID int64, req *models.WindowRequest) (*models.WindowResponse, error) {
	s.logger.Info("CreateWindow: creating window for provider=%d, weekday=%d by user=%d",
		providerID, req.Weekday, req.UserID)

	if err := s.checkOperatorAccess(ctx, providerID, req.UserID); err != nil {
		return nil, err
	}

	window := req.ToDomain(providerID)
	if err := window.Validate(); err != nil {
		s.logger.Warn("CreateWindow: invalid window for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.availabilityRepo.CreateWindow(ctx, window)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrDuplicateWindow) {
			s.logger.Warn("CreateWindow: duplicate window for provider=%d, weekday=%d", providerID, req.Weekday)
			return nil, ErrDuplicateWindow
		}
		s.logger.Error("CreateWindow: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: CreateWindow - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateWindow: created window id=%d for provider=%d", created.ID, providerID)
	return models.FromDomainWindow(created), nil
}

// UpdateWindow обновляет рабочее окно исполнителя.
// Окно должно принадлежать исполнителю из пути запроса.
func (s *Service) UpdateWindow(ctx context.Context, providerID, windowID int64, req *models.WindowRequest) (*models.WindowResponse, error) {
	s.logger.Info("UpdateWindow: updating window id=%d for provider=%d by user=%d",
		windowID, providerID, req.UserID)

	if err := s.checkOperatorAccess(ctx, providerID, req.UserID); err != nil {
		return nil, err
	}

	if err := s.checkWindowOwnership(ctx, providerID, windowID); err != nil {
		return nil, err
	}

	window := req.ToDomain(providerID)
	if err := window.Validate(); err != nil {
		s.logger.Warn("UpdateWindow: invalid window id=%d for provider=%d: %v", windowID, providerID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	updated, err := s.availabilityRepo.UpdateWindow(ctx, windowID, window)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			s.logger.Warn("UpdateWindow: window id=%d not found", windowID)
			return nil, ErrWindowNotFound
		}
		s.logger.Error("UpdateWindow: repository error for window id=%d: %v", windowID, err)
		return nil, fmt.Errorf("%w: UpdateWindow - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateWindow: updated window id=%d for provider=%d", windowID, providerID)
	return models.FromDomainWindow(updated), nil
}

// DeleteWindow удаляет рабочее окно исполнителя
func (s *Service) DeleteWindow(ctx context.Context, providerID, windowID int64, req *models.DeleteRequest) error {
	s.logger.Info("DeleteWindow: deleting window id=%d for provider=%d by user=%d",
		windowID, providerID, req.UserID)

	if err := s.checkOperatorAccess(ctx, providerID, req.UserID); err != nil {
		return err
	}

	if err := s.checkWindowOwnership(ctx, providerID, windowID); err != nil {
		return err
	}

	if err := s.availabilityRepo.DeleteWindow(ctx, windowID); err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			s.logger.Warn("DeleteWindow: window id=%d not found", windowID)
			return ErrWindowNotFound
		}
		s.logger.Error("DeleteWindow: repository error for window id=%d: %v", windowID, err)
		return fmt.Errorf("%w: DeleteWindow - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteWindow: deleted window id=%d for provider=%d", windowID, providerID)
	return nil
}

// CreateServiceWindow создает фиксированное окно услуги.
// Окна услуги замещают рабочие окна исполнителя при генерации слотов
// на соответствующий день недели.
func (s *Service) CreateServiceWindow(ctx context.Context, serviceID int64, req *models.ServiceWindowRequest) (*models.ServiceWindowResponse, error) {
	s.logger.Info("CreateServiceWindow: creating window for service=%d, weekday=%d by user=%d",
		serviceID, req.Weekday, req.UserID)

	service, err := s.getService(ctx, "CreateServiceWindow", serviceID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOperatorAccess(ctx, service.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	window := req.ToDomain(serviceID)
	if err := window.Validate(); err != nil {
		s.logger.Warn("CreateServiceWindow: invalid window for service=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.availabilityRepo.CreateServiceWindow(ctx, window)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrDuplicateWindow) {
			s.logger.Warn("CreateServiceWindow: duplicate window for service=%d, weekday=%d", serviceID, req.Weekday)
			return nil, ErrDuplicateWindow
		}
		s.logger.Error("CreateServiceWindow: repository error for service=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: CreateServiceWindow - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateServiceWindow: created window id=%d for service=%d", created.ID, serviceID)
	return models.FromDomainServiceWindow(created), nil
}

// DeleteServiceWindow удаляет фиксированное окно услуги
func (s *Service) DeleteServiceWindow(ctx context.Context, serviceID, windowID int64, req *models.DeleteRequest) error {
	s.logger.Info("DeleteServiceWindow: deleting window id=%d for service=%d by user=%d",
		windowID, serviceID, req.UserID)

	service, err := s.getService(ctx, "DeleteServiceWindow", serviceID)
	if err != nil {
		return err
	}

	if err := s.checkOperatorAccess(ctx, service.ProviderID, req.UserID); err != nil {
		return err
	}

	window, err := s.availabilityRepo.GetServiceWindowByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			s.logger.Warn("DeleteServiceWindow: window id=%d not found", windowID)
			return ErrWindowNotFound
		}
		s.logger.Error("DeleteServiceWindow: repository error for window id=%d: %v", windowID, err)
		return fmt.Errorf("%w: DeleteServiceWindow - repository error: %v", ErrInternal, err)
	}

	if window.ServiceID != serviceID {
		s.logger.Warn("DeleteServiceWindow: window id=%d belongs to service=%d, not service=%d",
			windowID, window.ServiceID, serviceID)
		return ErrWindowNotFound
	}

	if err := s.availabilityRepo.DeleteServiceWindow(ctx, windowID); err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			return ErrWindowNotFound
		}
		s.logger.Error("DeleteServiceWindow: repository error for window id=%d: %v", windowID, err)
		return fmt.Errorf("%w: DeleteServiceWindow - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteServiceWindow: deleted window id=%d for service=%d", windowID, serviceID)
	return nil
}

// Вспомогательные методы

// checkWindowOwnership проверяет, что окно принадлежит исполнителю
func (s *Service) checkWindowOwnership(ctx context.Context, providerID, windowID int64) error {
	windows, err := s.availabilityRepo.GetWindowsByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("checkWindowOwnership: repository error for provider=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkWindowOwnership - repository error: %v", ErrInternal, err)
	}

	for _, w := range windows {
		if w.ID == windowID {
			return nil
		}
	}

	s.logger.Warn("checkWindowOwnership: window id=%d does not belong to provider=%d", windowID, providerID)
	return ErrWindowNotFound
}

func (s *Service) getService(ctx context.Context, op string, serviceID int64) (*catalogClient.Service, error) {
	service, err := s.catalogClient.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			s.logger.Warn("%s: service id=%d not found", op, serviceID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("%s: failed to get service id=%d: %v", op, serviceID, err)
		return nil, fmt.Errorf("%w: %s - failed to get service: %v", ErrInternal, op, err)
	}
	return service, nil
}

// checkOperatorAccess проверяет, что пользователь является оператором исполнителя
func (s *Service) checkOperatorAccess(ctx context.Context, providerID int64, userID int64) error {
	provider, err := s.catalogClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			s.logger.Warn("checkOperatorAccess: provider id=%d not found", providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("checkOperatorAccess: failed to get provider id=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkOperatorAccess - failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsOperator(userID) {
		s.logger.Warn("checkOperatorAccess: user=%d is not an operator of provider=%d", userID, providerID)
		return ErrAccessDenied
	}

	return nil
}
