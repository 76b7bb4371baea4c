package basket

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service owns each till user's single cart. The database copy is
// authoritative; Redis holds a write-through snapshot served when the
// database cannot be read.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	Lines(ctx context.Context, userID uuid.UUID) ([]pricing.CartLine, error)
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*View, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	AttachCutting(ctx context.Context, userID, itemID uuid.UUID, req AttachCuttingRequest) (*View, error)
	DetachCutting(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	AttachEdgeBanding(ctx context.Context, userID, itemID uuid.UUID, req AttachEdgeBandingRequest) (*View, error)
	DetachEdgeBanding(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Evict(ctx context.Context, userID uuid.UUID) error
}

type catalogLookup interface {
	Product(ctx context.Context, id uuid.UUID) (pricing.Product, error)
	Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.Product, error)
	Tier(ctx context.Context, id uuid.UUID) (pricing.ThicknessTier, error)
	Tiers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]pricing.ThicknessTier, error)
}

type ServiceParams struct {
	Repo    *Repository
	Cache   *Cache
	Catalog catalogLookup
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	cache   *Cache
	catalog catalogLookup
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("basket cache required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	return &service{
		repo:    params.Repo,
		cache:   params.Cache,
		catalog: params.Catalog,
		logg:    params.Logger,
	}, nil
}

// Get returns the cart. A failed database read falls back to the cached
// snapshot flagged stale. An empty database basket next to a non-empty cache
// is restored from the cache.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	remote, err := s.loadRemote(ctx, userID)
	if err != nil {
		cached, ok, cacheErr := s.cache.Load(ctx, userID)
		if cacheErr == nil && ok {
			s.warn(ctx, userID, "basket served from cache", err)
			return newView(cached, SourceLocal, true), nil
		}
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodeDependency, "load basket")
	}

	local, _, cacheErr := s.cache.Load(ctx, userID)
	if cacheErr != nil {
		s.warn(ctx, userID, "basket cache unreadable", cacheErr)
	}

	picked, source := Reconcile(remote, local)
	if source == SourceLocal {
		restored, err := s.restore(ctx, userID, picked)
		if err != nil {
			s.warn(ctx, userID, "basket restore from cache failed", err)
			return newView(picked, SourceLocal, true), nil
		}
		picked = restored
	}
	s.writeThrough(ctx, picked)
	return newView(picked, source, false), nil
}

// Lines returns the authoritative cart lines for checkout. It never falls
// back to the cache.
func (s *service) Lines(ctx context.Context, userID uuid.UUID) ([]pricing.CartLine, error) {
	snap, err := s.loadRemote(ctx, userID)
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodeDependency, "load basket")
	}
	return snap.Lines, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*View, error) {
	product, err := s.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	basket, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range basket.Items {
		item := &basket.Items[i]
		if item.ProductID != product.ID {
			continue
		}
		merged := item.Quantity + req.Quantity
		if err := pricing.ValidateQuantity(merged, product.StockQty); err != nil {
			return nil, err
		}
		item.Quantity = merged
		if err := s.repo.SaveItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item")
		}
		return s.refresh(ctx, userID)
	}

	if err := pricing.ValidateQuantity(req.Quantity, product.StockQty); err != nil {
		return nil, err
	}
	item := &models.BasketItem{
		BasketID:  basket.ID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
		Position:  nextPosition(basket.Items),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add basket item")
	}
	return s.refresh(ctx, userID)
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	return s.mutateItem(ctx, userID, itemID, func(item *models.BasketItem, product pricing.Product) error {
		if err := pricing.ValidateQuantity(quantity, product.StockQty); err != nil {
			return err
		}
		item.Quantity = quantity
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	basket, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	removed, err := s.repo.DeleteItem(ctx, basket.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove basket item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}
	return s.refresh(ctx, userID)
}

func (s *service) AttachCutting(ctx context.Context, userID, itemID uuid.UUID, req AttachCuttingRequest) (*View, error) {
	cutting, err := pricing.NewCuttingService(req.NumberOfBoards, req.PricePerCut)
	if err != nil {
		return nil, err
	}
	return s.mutateItem(ctx, userID, itemID, func(item *models.BasketItem, product pricing.Product) error {
		if err := pricing.ValidateQuantity(item.Quantity, product.StockQty); err != nil {
			return err
		}
		id := uuid.New()
		boards := cutting.Boards
		item.CuttingID = &id
		item.CuttingBoards = &boards
		item.CuttingPricePerCut = decimal.NewNullDecimal(cutting.PricePerCut)
		return nil
	})
}

func (s *service) DetachCutting(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	return s.mutateItem(ctx, userID, itemID, func(item *models.BasketItem, _ pricing.Product) error {
		item.CuttingID = nil
		item.CuttingBoards = nil
		item.CuttingPricePerCut = decimal.NullDecimal{}
		return nil
	})
}

func (s *service) AttachEdgeBanding(ctx context.Context, userID, itemID uuid.UUID, req AttachEdgeBandingRequest) (*View, error) {
	tier, err := s.catalog.Tier(ctx, req.ThicknessID)
	if err != nil {
		return nil, err
	}
	banding, err := pricing.NewEdgeBandingService(req.Width, req.Height, &tier)
	if err != nil {
		return nil, err
	}
	return s.mutateItem(ctx, userID, itemID, func(item *models.BasketItem, product pricing.Product) error {
		if err := pricing.ValidateQuantity(item.Quantity, product.StockQty); err != nil {
			return err
		}
		id := uuid.New()
		tierID := banding.Thickness.ID
		item.BandingID = &id
		item.BandingThicknessID = &tierID
		item.BandingWidthMM = decimal.NewNullDecimal(banding.WidthMM)
		item.BandingHeightMM = decimal.NewNullDecimal(banding.HeightMM)
		return nil
	})
}

func (s *service) DetachEdgeBanding(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	return s.mutateItem(ctx, userID, itemID, func(item *models.BasketItem, _ pricing.Product) error {
		item.BandingID = nil
		item.BandingThicknessID = nil
		item.BandingWidthMM = decimal.NullDecimal{}
		item.BandingHeightMM = decimal.NullDecimal{}
		return nil
	})
}

// Clear empties the cart in the database and the cache. The database
// basket is stamped cleared, so a cache drop that fails cannot bring the
// old lines back.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	basket, err := s.repo.FindByUser(ctx, userID)
	if err != nil && !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	if basket != nil {
		if err := s.repo.Empty(ctx, basket.ID, time.Now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear basket")
		}
	}
	if err := s.cache.Drop(ctx, userID); err != nil {
		s.warn(ctx, userID, "basket cache drop failed", err)
	}
	return nil
}

// Evict forgets the cached snapshot only; the database basket is kept.
func (s *service) Evict(ctx context.Context, userID uuid.UUID) error {
	if err := s.cache.Drop(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "evict basket cache")
	}
	return nil
}

func (s *service) mutateItem(ctx context.Context, userID, itemID uuid.UUID, apply func(*models.BasketItem, pricing.Product) error) (*View, error) {
	basket, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	var item *models.BasketItem
	for i := range basket.Items {
		if basket.Items[i].ID == itemID {
			item = &basket.Items[i]
			break
		}
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}

	product, err := s.catalog.Product(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if err := apply(item, product); err != nil {
		return nil, err
	}
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item")
	}
	return s.refresh(ctx, userID)
}

func (s *service) ensure(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	basket, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	return basket, nil
}

// refresh reloads the basket after a write and pushes it to the cache.
func (s *service) refresh(ctx context.Context, userID uuid.UUID) (*View, error) {
	snap, err := s.loadRemote(ctx, userID)
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodeDependency, "reload basket")
	}
	s.writeThrough(ctx, snap)
	return newView(snap, SourceRemote, false), nil
}

// loadRemote reads the database basket and prices it against the catalog.
// Lines whose product is gone are left out.
func (s *service) loadRemote(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	basket, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return Snapshot{UserID: userID, Lines: []pricing.CartLine{}}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	productIDs := make([]uuid.UUID, 0, len(basket.Items))
	tierIDs := []uuid.UUID{}
	for _, item := range basket.Items {
		productIDs = append(productIDs, item.ProductID)
		if item.HasEdgeBanding() {
			tierIDs = append(tierIDs, *item.BandingThicknessID)
		}
	}
	products, err := s.catalog.Products(ctx, productIDs)
	if err != nil {
		return Snapshot{}, err
	}
	tiers, err := s.catalog.Tiers(ctx, tierIDs)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		BasketID:  basket.ID,
		UserID:    userID,
		Lines:     make([]pricing.CartLine, 0, len(basket.Items)),
		UpdatedAt: basket.UpdatedAt,
		ClearedAt: basket.ClearedAt,
	}
	for _, item := range basket.Items {
		product, ok := products[item.ProductID]
		if !ok {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "product_id", item.ProductID.String()), "basket line skipped: product unavailable")
			}
			continue
		}
		snap.Lines = append(snap.Lines, toLine(item, product, tiers))
		if item.UpdatedAt.After(snap.UpdatedAt) {
			snap.UpdatedAt = item.UpdatedAt
		}
	}
	return snap, nil
}

// restore writes a cached snapshot back into an empty database basket.
func (s *service) restore(ctx context.Context, userID uuid.UUID, snap Snapshot) (Snapshot, error) {
	basket, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	items := make([]models.BasketItem, 0, len(snap.Lines))
	for i, line := range snap.Lines {
		items = append(items, fromLine(line, i))
	}
	if err := s.repo.ReplaceItems(ctx, basket.ID, items); err != nil {
		return Snapshot{}, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithBasketID(ctx, basket.ID.String()), "basket restored from cache")
	}
	return s.loadRemote(ctx, userID)
}

// writeThrough updates the cache; failures are logged and swallowed.
func (s *service) writeThrough(ctx context.Context, snap Snapshot) {
	if err := s.cache.Store(ctx, snap); err != nil {
		s.warn(ctx, snap.UserID, "basket cache write failed", err)
	}
}

func (s *service) warn(ctx context.Context, userID uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithUserID(ctx, userID.String())
	if err != nil {
		ctx = s.logg.WithField(ctx, "error", err.Error())
	}
	s.logg.Warn(ctx, msg)
}

func toLine(item models.BasketItem, product pricing.Product, tiers map[uuid.UUID]pricing.ThicknessTier) pricing.CartLine {
	line := pricing.CartLine{
		ID:       item.ID,
		Product:  product,
		Quantity: item.Quantity,
	}
	if item.HasCutting() {
		line.Cutting = &pricing.CuttingService{
			ID:          derefID(item.CuttingID, item.ID),
			Boards:      *item.CuttingBoards,
			PricePerCut: item.CuttingPricePerCut.Decimal,
		}
	}
	if item.HasEdgeBanding() {
		if tier, ok := tiers[*item.BandingThicknessID]; ok {
			line.EdgeBanding = &pricing.EdgeBandingService{
				ID:        derefID(item.BandingID, item.ID),
				Thickness: tier,
				WidthMM:   item.BandingWidthMM.Decimal,
				HeightMM:  item.BandingHeightMM.Decimal,
			}
		}
	}
	return line
}

func fromLine(line pricing.CartLine, position int) models.BasketItem {
	item := models.BasketItem{
		ID:        line.ID,
		ProductID: line.Product.ID,
		Quantity:  line.Quantity,
		Position:  position,
	}
	if line.Cutting != nil {
		id := line.Cutting.ID
		boards := line.Cutting.Boards
		item.CuttingID = &id
		item.CuttingBoards = &boards
		item.CuttingPricePerCut = decimal.NewNullDecimal(line.Cutting.PricePerCut)
	}
	if line.EdgeBanding != nil {
		id := line.EdgeBanding.ID
		tierID := line.EdgeBanding.Thickness.ID
		item.BandingID = &id
		item.BandingThicknessID = &tierID
		item.BandingWidthMM = decimal.NewNullDecimal(line.EdgeBanding.WidthMM)
		item.BandingHeightMM = decimal.NewNullDecimal(line.EdgeBanding.HeightMM)
	}
	return item
}

func nextPosition(items []models.BasketItem) int {
	next := 0
	for _, item := range items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}

func derefID(id *uuid.UUID, fallback uuid.UUID) uuid.UUID {
	if id == nil {
		return fallback
	}
	return *id
}
