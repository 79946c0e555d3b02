package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/ontoptea/orderhub/internal/core/port"
	"go.uber.org/zap"
)

const orderNumberAttempts = 3

const (
	defaultPage     = 1
	defaultPageSize = 20
)

type Service struct {
	orders     port.OrderRepository
	inventory  port.InventoryRepository
	specs      port.SpecRepository
	principals port.PrincipalRepository
	notifier   port.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	orders port.OrderRepository,
	inventory port.InventoryRepository,
	specs port.SpecRepository,
	principals port.PrincipalRepository,
	notifier port.Notifier,
	logger *zap.Logger) (*Service, error) {
	return &Service{
		orders:     orders,
		inventory:  inventory,
		specs:      specs,
		principals: principals,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *Service) CreateOrder(ctx context.Context, req port.CreateOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, reqItem := range req.Items {
		if reqItem.Quantity < 1 {
			return nil, domain.ErrBadQuantity
		}

		product, err := s.inventory.ReadProduct(ctx, reqItem.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrDataNotFound) {
				return nil, domain.ErrProductNotFound
			}
			s.logger.Error("Read product", zap.Uint64("product", reqItem.ProductID), zap.Error(err))
			return nil, domain.ErrInternal
		}
		if product.Stock < reqItem.Quantity {
			return nil, domain.ErrInsufficientStock
		}

		// Snapshot the catalog fields now. Later product edits never
		// change a placed order.
		item := domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Category:  product.Category,
			Price:     product.Price,
			Quantity:  reqItem.Quantity,
			SpecText:  s.resolveSpecText(ctx, reqItem.Specs),
		}
		items = append(items, item)

		qty, err := decimal.New(int64(item.Quantity), 0)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		lineTotal, err := item.Price.Mul(qty)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		total, err = total.Add(lineTotal)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
	}

	final, err := total.Sub(req.DiscountAmount)
	if err != nil {
		return nil, fmt.Errorf("math error: %w", err)
	}

	owner, err := s.resolvePrincipal(ctx, req.UserID, req.SessionID)
	if err != nil {
		s.logger.Error("Resolve principal", zap.Error(err))
		return nil, domain.ErrInternal
	}

	order := &domain.Order{
		UserID:         owner.ID,
		SessionID:      req.SessionID,
		Items:          items,
		TotalAmount:    total,
		DiscountAmount: req.DiscountAmount,
		FinalAmount:    final,
		Remark:         req.Remark,
		Status:         domain.OrderStatusPending,
		CreatedAt:      s.now(),
	}

	// Order insert and stock decrement share one transaction, so a lost
	// stock race surfaces as ErrInsufficientStock instead of an orphaned
	// order. The number is regenerated on a rare same-second collision.
	var saved *domain.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.Number = domain.NewOrderNumber(s.now())
		saved, err = s.orders.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflictingData) {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return nil, domain.ErrInsufficientStock
			}
			s.logger.Error("Create order", zap.Error(err))
			return nil, domain.ErrInternal
		}
	}
	if err != nil {
		s.logger.Error("Create order: number collisions exhausted", zap.Error(err))
		return nil, domain.ErrInternal
	}

	s.publish(ctx, domain.RoomProduction, domain.EventNewOrder, saved)
	s.publishPrintJob(ctx, saved)

	return saved, nil
}

// resolveSpecText turns a spec selection into the printable snapshot, one
// "Group: value1, value2" segment per group joined with "; ". Unknown group
// or item ids are skipped silently, which matches the storefront's historic
// behavior with stale carts.
func (s *Service) resolveSpecText(ctx context.Context, selection domain.SpecSelection) string {
	if len(selection) == 0 {
		return ""
	}

	groupIDs := make([]uint64, 0, len(selection))
	for groupID := range selection {
		groupIDs = append(groupIDs, groupID)
	}
	sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i] < groupIDs[j] })

	segments := make([]string, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		group, err := s.specs.ReadSpecGroup(ctx, groupID)
		if err != nil {
			s.logger.Debug("Skip unknown spec group", zap.Uint64("group", groupID), zap.Error(err))
			continue
		}

		values := make([]string, 0, len(selection[groupID]))
		for _, itemID := range selection[groupID] {
			item, err := s.specs.ReadSpecItem(ctx, itemID)
			if err != nil {
				s.logger.Debug("Skip unknown spec item", zap.Uint64("item", itemID), zap.Error(err))
				continue
			}
			values = append(values, item.Value)
		}
		if len(values) == 0 {
			continue
		}
		segments = append(segments, fmt.Sprintf("%s: %s", group.Name, strings.Join(values, ", ")))
	}

	return strings.Join(segments, "; ")
}

// resolvePrincipal finds the order owner, creating a guest on the fly for
// anonymous checkouts. Guest creation is idempotent per session token.
func (s *Service) resolvePrincipal(ctx context.Context, userID uint64, sessionID string) (*domain.Principal, error) {
	if userID != 0 {
		owner, err := s.principals.ReadPrincipal(ctx, userID)
		if err == nil {
			return owner, nil
		}
		if !errors.Is(err, domain.ErrDataNotFound) {
			return nil, err
		}
	}

	if sessionID != "" {
		guest, err := s.principals.FindGuestBySession(ctx, sessionID)
		if err == nil {
			return guest, nil
		}
		if !errors.Is(err, domain.ErrDataNotFound) {
			return nil, err
		}
	}

	guest := &domain.Principal{
		Username:  "guest_" + uuid.NewString(),
		Nickname:  "Guest",
		Guest:     true,
		SessionID: sessionID,
	}
	return s.principals.CreateGuest(ctx, guest)
}

func (s *Service) GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	order, err := s.orders.ReadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		s.logger.Error("Read order", zap.Uint64("order", orderID), zap.Error(err))
		return nil, domain.ErrInternal
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, req port.ListOrdersRequest) (*port.OrderPage, error) {
	filter := port.OrderFilter{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}

	if req.Status != "" {
		status, err := domain.ParseOrderStatus(req.Status)
		if err != nil {
			return nil, domain.ErrBadOrderStatus
		}
		filter.Status = status
	}

	switch req.RequestType {
	case port.RequestTypeAdmin:
		// full history
	case port.RequestTypeDisplay:
		filter.CreatedAfter = s.now().Add(-24 * time.Hour)
	default:
		filter.CreatedAfter = s.now().Add(-7 * 24 * time.Hour)
	}

	list, total, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		s.logger.Error("List orders", zap.Error(err))
		return nil, domain.ErrInternal
	}

	return &port.OrderPage{
		List:     list,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID uint64, sessionID string) (*domain.Order, error) {
	order, err := s.orders.ReadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		s.logger.Error("Read order", zap.Uint64("order", orderID), zap.Error(err))
		return nil, domain.ErrInternal
	}

	if sessionID != "" && order.SessionID != sessionID {
		return nil, domain.ErrForbidden
	}
	if order.Status != domain.OrderStatusPending {
		return nil, domain.ErrInvalidTransition
	}

	return s.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled)
}

func (s *Service) UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orders.ReadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		s.logger.Error("Read order", zap.Uint64("order", orderID), zap.Error(err))
		return nil, domain.ErrInternal
	}

	// Cancelling a terminal order is a no-op, not an error.
	if status == domain.OrderStatusCancelled && order.Status.Terminal() {
		return order, nil
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		s.logger.Error("Update order status", zap.Uint64("order", orderID), zap.Error(err))
		return nil, domain.ErrInternal
	}

	if status == domain.OrderStatusCancelled {
		s.restoreStock(ctx, updated)
	}

	s.broadcast(ctx, domain.EventStatusChange, updated)

	return updated, nil
}

// restoreStock gives the cancelled order's quantities back to inventory.
// Each item is best-effort: one failed restore is logged and the rest of
// the batch continues.
func (s *Service) restoreStock(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		err := s.inventory.RestoreStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.logger.Error("Restore stock",
				zap.String("order", order.Number),
				zap.Uint64("product", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *Service) publish(ctx context.Context, room string, eventType domain.EventType, payload any) {
	event, err := s.newEvent(eventType, payload)
	if err != nil {
		s.logger.Error("Encode event", zap.String("type", string(eventType)), zap.Error(err))
		return
	}
	if err := s.notifier.Publish(ctx, room, event); err != nil {
		s.logger.Error("Publish event",
			zap.String("type", string(eventType)),
			zap.String("room", room),
			zap.Error(err))
	}
}

func (s *Service) broadcast(ctx context.Context, eventType domain.EventType, payload any) {
	event, err := s.newEvent(eventType, payload)
	if err != nil {
		s.logger.Error("Encode event", zap.String("type", string(eventType)), zap.Error(err))
		return
	}
	if err := s.notifier.Broadcast(ctx, event); err != nil {
		s.logger.Error("Broadcast event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func (s *Service) publishPrintJob(ctx context.Context, order *domain.Order) {
	job := &domain.PrintJob{
		Order:   order,
		Content: RenderReceipt(order),
	}
	s.publish(ctx, domain.RoomPrintClient, domain.EventPrintJob, job)
}

func (s *Service) newEvent(eventType domain.EventType, payload any) (domain.NotificationEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.NotificationEvent{}, err
	}
	return domain.NotificationEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: s.now(),
	}, nil
}
