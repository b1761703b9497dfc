package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"storefront/database"
	"storefront/models"
)

const recentOrdersLimit = 5

type Stats struct {
	TotalUsers     int64            `json:"totalUsers"`
	TotalProducts  int64            `json:"totalProducts"`
	TotalOrders    int64            `json:"totalOrders"`
	TotalRevenue   float64          `json:"totalRevenue"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
}

type StatsService struct {
	users    database.UserRepository
	products database.ProductRepository
	orders   database.OrderRepository
}

func NewStatsService(store *database.Store) *StatsService {
	return &StatsService{users: store.Users, products: store.Products, orders: store.Orders}
}

// Dashboard gathers the admin dashboard figures concurrently.
func (s *StatsService) Dashboard(ctx context.Context) (*Stats, []models.Order, error) {
	stats := &Stats{}
	tracked := []models.OrderStatus{
		models.StatusPending,
		models.StatusProcessing,
		models.StatusShipped,
		models.StatusDelivered,
	}
	byStatus := make([]int64, len(tracked))
	var recent []models.Order

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.CountByRole(ctx, models.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.orders.Count(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.orders.Revenue(ctx)
		return err
	})
	for i, st := range tracked {
		i, st := i, st
		g.Go(func() (err error) {
			byStatus[i], err = s.orders.Count(ctx, st)
			return err
		})
	}
	g.Go(func() (err error) {
		recent, err = s.orders.List(ctx, database.OrderFilter{Limit: recentOrdersLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats.OrdersByStatus = make(map[string]int64, len(tracked))
	for i, st := range tracked {
		stats.OrdersByStatus[string(st)] = byStatus[i]
	}
	return stats, recent, nil
}
