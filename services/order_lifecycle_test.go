package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// failingGamificationStore fails every gamification write for one user
type failingGamificationStore struct {
	Store
	failFor uint
}

func (s *failingGamificationStore) WriteGamification(ctx context.Context, userID uint, apply func(models.Gamification) models.Gamification) error {
	if userID == s.failFor {
		return Transient("gamification write failed", errors.New("disk full"))
	}
	return s.Store.WriteGamification(ctx, userID, apply)
}

func (s *failingGamificationStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx Store) error {
		return fn(&failingGamificationStore{Store: tx, failFor: s.failFor})
	})
}

type OrderLifecycleTestSuite struct {
	suite.Suite
	db        *gorm.DB
	store     *GormStore
	publisher *RecordingPublisher
	lifecycle *OrderLifecycle

	customer models.Profile
	cook     models.Profile
	courier  models.Profile
	rival    models.Profile
	dish     models.Dish
}

func TestOrderLifecycleSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	s.db = testutil.OpenDB(s.T())
	s.store = NewGormStore(s.db)
	s.publisher = &RecordingPublisher{}
	s.lifecycle = NewOrderLifecycle(s.store, DefaultPolicy(), s.publisher)
	s.lifecycle.now = func() time.Time { return time.Date(2026, 5, 10, 19, 30, 0, 0, time.UTC) }

	s.customer = s.createProfile("auth0|customer", models.RoleCustomer)
	s.cook = s.createProfile("auth0|cook", models.RoleCook)
	s.courier = s.createProfile("auth0|courier", models.RoleDelivery)
	s.rival = s.createProfile("auth0|rival", models.RoleDelivery)

	s.dish = models.Dish{CookID: s.cook.ID, Name: "Baiao de dois", Price: decimal.RequireFromString("25.00"), Category: "Brazilian", IsActive: true}
	s.Require().NoError(s.db.Create(&s.dish).Error)
}

func (s *OrderLifecycleTestSuite) createProfile(auth0ID string, role models.Role) models.Profile {
	p := models.Profile{Auth0ID: auth0ID, FullName: auth0ID, Email: auth0ID + "@hometaste.test", Role: role}
	s.Require().NoError(s.db.Create(&p).Error)
	return p
}

func (s *OrderLifecycleTestSuite) createOrder(status models.OrderStatus, deliveryType models.DeliveryType, total string) models.Order {
	order := models.Order{
		CustomerID:   s.customer.ID,
		CookID:       s.cook.ID,
		DishID:       s.dish.ID,
		Quantity:     2,
		TotalPrice:   decimal.RequireFromString(total),
		DeliveryType: deliveryType,
		Status:       status,
	}
	s.Require().NoError(s.db.Create(&order).Error)
	return order
}

func (s *OrderLifecycleTestSuite) principal(p models.Profile) Principal {
	return Principal{ID: p.ID, Role: p.Role}
}

func (s *OrderLifecycleTestSuite) gamificationOf(p models.Profile) models.Gamification {
	g, err := s.store.FetchGamification(context.Background(), p.ID)
	s.Require().NoError(err)
	return *g
}

func (s *OrderLifecycleTestSuite) TestDeliveryOrderFullLifecycle() {
	ctx := context.Background()
	order := s.createOrder(models.StatusPending, models.DeliveryTypeDelivery, "50.00")

	steps := []struct {
		actor models.Profile
		to    models.OrderStatus
	}{
		{s.cook, models.StatusAccepted},
		{s.cook, models.StatusPreparing},
		{s.cook, models.StatusReady},
		{s.courier, models.StatusInDelivery},
		{s.courier, models.StatusDelivered},
	}
	for _, step := range steps {
		updated, err := s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(step.actor), step.to)
		s.Require().NoError(err, "moving to %s", step.to)
		s.Equal(step.to, updated.Status)
	}

	stored, err := s.store.FetchOrder(ctx, order.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.DeliveryID)
	s.Equal(s.courier.ID, *stored.DeliveryID)

	cook := s.gamificationOf(s.cook)
	s.Equal(10, cook.Points)
	s.Equal(1, cook.Level)
	s.Equal(1, cook.TotalOrders)
	s.True(decimal.RequireFromString("50").Equal(cook.TotalEarnings))
	s.Equal([]string{"first_order"}, []string(cook.Badges))

	courier := s.gamificationOf(s.courier)
	s.Equal(10, courier.Points)
	s.True(decimal.RequireFromString("5").Equal(courier.TotalEarnings))

	_, err = s.store.FetchGamification(ctx, s.customer.ID)
	s.ErrorIs(err, ErrNotFound, "customers earn nothing")

	events := s.publisher.Events()
	s.Require().Len(events, 5)
	s.Equal(models.StatusReady, events[3].From)
	s.Equal(models.StatusInDelivery, events[3].To)
	s.Equal(s.courier.ID, events[3].ChangedBy)
	s.Require().NotNil(events[3].DeliveryID)
	s.Equal(s.courier.ID, *events[3].DeliveryID)
}

func (s *OrderLifecycleTestSuite) TestEatInServedByCook() {
	ctx := context.Background()
	order := s.createOrder(models.StatusReady, models.DeliveryTypeEatIn, "30.00")

	updated, err := s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.cook), models.StatusDelivered)
	s.Require().NoError(err)
	s.Equal(models.StatusDelivered, updated.Status)
	s.Nil(updated.DeliveryID)

	cook := s.gamificationOf(s.cook)
	s.True(decimal.RequireFromString("30").Equal(cook.TotalEarnings))
	_, err = s.store.FetchGamification(ctx, s.courier.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *OrderLifecycleTestSuite) TestGamificationAppliedOnce() {
	ctx := context.Background()
	order := s.createOrder(models.StatusReady, models.DeliveryTypeEatIn, "20.00")

	_, err := s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.cook), models.StatusDelivered)
	s.Require().NoError(err)

	_, err = s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.cook), models.StatusDelivered)
	s.ErrorIs(err, ErrInvalidTransition)

	cook := s.gamificationOf(s.cook)
	s.Equal(10, cook.Points)
	s.Equal(1, cook.TotalOrders)
	s.Len(s.publisher.Events(), 1)
}

func (s *OrderLifecycleTestSuite) TestSecondCourierCannotTakeAssignedOrder() {
	ctx := context.Background()
	order := s.createOrder(models.StatusReady, models.DeliveryTypeDelivery, "20.00")

	_, err := s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.courier), models.StatusInDelivery)
	s.Require().NoError(err)

	_, err = s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.rival), models.StatusDelivered)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *OrderLifecycleTestSuite) TestFailedGamificationRollsBackStatus() {
	ctx := context.Background()
	order := s.createOrder(models.StatusInDelivery, models.DeliveryTypeDelivery, "40.00")
	s.Require().NoError(s.db.Model(&order).Update("delivery_id", s.courier.ID).Error)

	failing := NewOrderLifecycle(&failingGamificationStore{Store: s.store, failFor: s.courier.ID}, DefaultPolicy(), s.publisher)

	_, err := failing.ApplyTransition(ctx, order.ID, s.principal(s.courier), models.StatusDelivered)
	s.Require().Error(err)
	s.ErrorIs(err, ErrTransient)

	stored, err := s.store.FetchOrder(ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInDelivery, stored.Status)

	_, err = s.store.FetchGamification(ctx, s.cook.ID)
	s.ErrorIs(err, ErrNotFound, "the cook's update must roll back with the status")
	s.Empty(s.publisher.Events())

	// The retry goes through once the store recovers
	_, err = s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.courier), models.StatusDelivered)
	s.Require().NoError(err)
	s.Equal(10, s.gamificationOf(s.cook).Points)
}

func (s *OrderLifecycleTestSuite) TestPublishFailureDoesNotFailTransition() {
	ctx := context.Background()
	order := s.createOrder(models.StatusPending, models.DeliveryTypeDelivery, "20.00")
	s.publisher.Err = errors.New("broker unreachable")

	updated, err := s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.cook), models.StatusAccepted)
	s.Require().NoError(err)
	s.Equal(models.StatusAccepted, updated.Status)
}

func (s *OrderLifecycleTestSuite) TestMissingOrder() {
	_, err := s.lifecycle.ApplyTransition(context.Background(), 9999, s.principal(s.cook), models.StatusAccepted)
	s.ErrorIs(err, ErrNotFound)

	var coreErr *Error
	s.Require().True(errors.As(err, &coreErr))
	s.Equal("ORDER_NOT_FOUND", coreErr.Code)
}

func (s *OrderLifecycleTestSuite) TestBadgesAccumulate() {
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		order := s.createOrder(models.StatusReady, models.DeliveryTypeEatIn, "10.00")
		_, err := s.lifecycle.ApplyTransition(ctx, order.ID, s.principal(s.cook), models.StatusDelivered)
		s.Require().NoError(err)
	}

	cook := s.gamificationOf(s.cook)
	s.Equal(100, cook.Points)
	s.Equal(2, cook.Level)
	s.Equal(10, cook.TotalOrders)
	s.Equal([]string{"first_order", "ten_orders"}, []string(cook.Badges))
}

func (s *OrderLifecycleTestSuite) TestConcurrentDeliveriesForSameCook() {
	ctx := context.Background()
	orders := []models.Order{
		s.createOrder(models.StatusReady, models.DeliveryTypeEatIn, "20.00"),
		s.createOrder(models.StatusReady, models.DeliveryTypeEatIn, "30.00"),
		s.createOrder(models.StatusReady, models.DeliveryTypeEatIn, "12.35"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(orders))
	for i, order := range orders {
		wg.Add(1)
		go func(i int, orderID uint) {
			defer wg.Done()
			_, errs[i] = s.lifecycle.ApplyTransition(ctx, orderID, s.principal(s.cook), models.StatusDelivered)
		}(i, order.ID)
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}

	cook := s.gamificationOf(s.cook)
	s.Equal(30, cook.Points)
	s.Equal(3, cook.TotalOrders)
	s.True(decimal.RequireFromString("62.35").Equal(cook.TotalEarnings), cook.TotalEarnings.String())
	s.Len(s.publisher.Events(), 3)
}

func TestWriteGamification_CreatesMissingRecord(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	add := func(g models.Gamification) models.Gamification {
		g.Points += 10
		return g
	}
	require.NoError(t, store.WriteGamification(ctx, 42, add))
	require.NoError(t, store.WriteGamification(ctx, 42, add))

	g, err := store.FetchGamification(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 20, g.Points)
	assert.Equal(t, 1, g.Level)

	var count int64
	require.NoError(t, db.Model(&models.Gamification{}).Where("user_id = ?", 42).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWriteOrderStatus_StaleStatus(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewGormStore(db)

	order := models.Order{CustomerID: 1, CookID: 2, DishID: 3, Quantity: 1, TotalPrice: decimal.NewFromInt(10), DeliveryType: models.DeliveryTypeEatIn, Status: models.StatusAccepted}
	require.NoError(t, db.Create(&order).Error)

	err := store.WriteOrderStatus(context.Background(), order.ID, models.StatusPending, models.StatusAccepted, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = store.WriteOrderStatus(context.Background(), order.ID, models.StatusAccepted, models.StatusPreparing, nil)
	assert.NoError(t, err)
}
