package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/beton-labs/backend-beton/internal/catalog"
	"github.com/beton-labs/backend-beton/internal/pricing"
)

// ErrNotFound indicates the requested cart or item could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Cart is a shopping cart header.
type Cart struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	AnonID    *string
	ExpiresAt time.Time
}

// Item is a cart line with its pricing snapshot. UnitPrice is the price at the
// recorded delivery tier; NormalPrice backs the tier fallback at calculation
// time.
type Item struct {
	ID          uuid.UUID
	CartID      uuid.UUID
	ProductID   uuid.UUID
	Name        string
	Slug        string
	Unit        string
	Qty         int
	Selected    bool
	PriceType   pricing.PriceType
	UnitPrice   decimal.Decimal
	NormalPrice *decimal.Decimal
}

// Service encapsulates cart domain operations.
type Service struct {
	DB       catalog.DB
	Products *catalog.Store
	TTL      time.Duration
	Now      func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// EnsureCart loads or creates an active cart for the provided identifiers.
func (s *Service) EnsureCart(ctx context.Context, userID *string, anonID *string) (Cart, error) {
	if s == nil || s.DB == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	expires := s.now().Add(s.ttl())

	if userID != nil && *userID != "" {
		uid, err := uuid.Parse(*userID)
		if err != nil {
			return Cart{}, fmt.Errorf("parse user id: %w", ErrInvalidInput)
		}
		cart, err := s.findCart(ctx, "user_id = $1 AND expires_at > now()", uid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return s.createCart(ctx, &uid, nil, expires)
			}
			return Cart{}, err
		}
		s.touch(ctx, cart.ID, expires)
		return cart, nil
	}

	if anonID != nil && *anonID != "" {
		cart, err := s.findCart(ctx, "anon_id = $1 AND expires_at > now()", *anonID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return s.createCart(ctx, nil, anonID, expires)
			}
			return Cart{}, err
		}
		s.touch(ctx, cart.ID, expires)
		return cart, nil
	}

	return Cart{}, ErrInvalidInput
}

// Get loads a cart header by identifier.
func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	if s == nil || s.DB == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	id, err := uuid.Parse(cartID)
	if err != nil {
		return Cart{}, fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	cart, err := s.findCart(ctx, "id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	if cart.ExpiresAt.Before(s.now()) {
		return Cart{}, ErrNotFound
	}
	return cart, nil
}

// AddItem inserts or increments a cart line for the product at the requested
// delivery tier, snapshotting the tier and normal prices.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, tier pricing.PriceType, qty int) error {
	if s == nil || s.DB == nil || s.Products == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cID, err := uuid.Parse(cartID)
	if err != nil {
		return fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	pID, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("parse product id: %w", ErrInvalidInput)
	}

	var existingID uuid.UUID
	var existingQty int
	err = s.DB.QueryRow(ctx,
		`SELECT id, qty FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND price_type = $3`,
		cID, pID, string(tier)).Scan(&existingID, &existingQty)
	if err == nil {
		_, err = s.DB.Exec(ctx, `UPDATE cart_items SET qty = $2, updated_at = now() WHERE id = $1`,
			existingID, existingQty+qty)
		if err != nil {
			return err
		}
		s.touch(ctx, cID, s.now().Add(s.ttl()))
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	product, err := s.Products.GetByID(ctx, toPgUUID(pID))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("unknown product: %w", ErrInvalidInput)
		}
		return err
	}
	if product.StockQuantity <= 0 {
		return fmt.Errorf("product out of stock: %w", ErrInvalidInput)
	}
	if !product.Sellable() {
		return fmt.Errorf("product has no offered price: %w", ErrInvalidInput)
	}
	unitPrice := pricing.Resolve(product.Prices, tier)
	var normal *string
	if product.Prices.Normal != nil {
		v := product.Prices.Normal.String()
		normal = &v
	}
	_, err = s.DB.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, name, slug, unit, qty, selected, price_type, unit_price, normal_price)
		 VALUES ($1, $2, $3, $4, $5, $6, true, $7, $8, $9)`,
		cID, pID, product.Name, product.Slug, product.Unit, qty, string(tier), unitPrice.String(), normal)
	if err != nil {
		return err
	}
	s.touch(ctx, cID, s.now().Add(s.ttl()))
	return nil
}

// UpdateQty updates the quantity for a cart item.
func (s *Service) UpdateQty(ctx context.Context, cartID, itemID string, qty int) error {
	if s == nil || s.DB == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cID, iID, err := parsePair(cartID, itemID)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx,
		`UPDATE cart_items SET qty = $3, updated_at = now() WHERE id = $2 AND cart_id = $1`, cID, iID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.touch(ctx, cID, s.now().Add(s.ttl()))
	return nil
}

// SetSelected toggles whether a cart item participates in totals.
func (s *Service) SetSelected(ctx context.Context, cartID, itemID string, selected bool) error {
	if s == nil || s.DB == nil {
		return errors.New("cart service not configured")
	}
	cID, iID, err := parsePair(cartID, itemID)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx,
		`UPDATE cart_items SET selected = $3, updated_at = now() WHERE id = $2 AND cart_id = $1`, cID, iID, selected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveItem deletes a cart item.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) error {
	if s == nil || s.DB == nil {
		return errors.New("cart service not configured")
	}
	cID, iID, err := parsePair(cartID, itemID)
	if err != nil {
		return err
	}
	if _, err := s.DB.Exec(ctx, `DELETE FROM cart_items WHERE id = $2 AND cart_id = $1`, cID, iID); err != nil {
		return err
	}
	s.touch(ctx, cID, s.now().Add(s.ttl()))
	return nil
}

// Items lists all lines of the cart.
func (s *Service) Items(ctx context.Context, cartID string) ([]Item, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("cart service not configured")
	}
	cID, err := uuid.Parse(cartID)
	if err != nil {
		return nil, fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	rows, err := s.DB.Query(ctx,
		`SELECT id, cart_id, product_id, name, slug, unit, qty, selected, price_type, unit_price, normal_price
		 FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC`, cID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it     Item
			tier   string
			unit   pgtype.Numeric
			normal pgtype.Numeric
		)
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Slug, &it.Unit,
			&it.Qty, &it.Selected, &tier, &unit, &normal); err != nil {
			return nil, err
		}
		it.PriceType = pricing.ParsePriceType(tier)
		if v := numericToDecimal(unit); v != nil {
			it.UnitPrice = *v
		}
		it.NormalPrice = numericToDecimal(normal)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Merge moves guest cart items into the user's active cart returning the
// resulting cart identifier. Quantities take the larger of the two carts.
func (s *Service) Merge(ctx context.Context, guestCartID, userID string) (string, error) {
	if s == nil || s.DB == nil {
		return "", errors.New("cart service not configured")
	}
	guest, err := s.Get(ctx, guestCartID)
	if err != nil {
		return "", err
	}
	userIDCopy := userID
	target, err := s.EnsureCart(ctx, &userIDCopy, nil)
	if err != nil {
		return "", err
	}
	guestItems, err := s.Items(ctx, guest.ID.String())
	if err != nil {
		return "", err
	}
	for _, item := range guestItems {
		var existingID uuid.UUID
		var existingQty int
		err := s.DB.QueryRow(ctx,
			`SELECT id, qty FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND price_type = $3`,
			target.ID, item.ProductID, string(item.PriceType)).Scan(&existingID, &existingQty)
		if err == nil {
			if existingQty < item.Qty {
				if _, err := s.DB.Exec(ctx,
					`UPDATE cart_items SET qty = $2, updated_at = now() WHERE id = $1`, existingID, item.Qty); err != nil {
					return "", err
				}
			}
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", err
		}
		var normal *string
		if item.NormalPrice != nil {
			v := item.NormalPrice.String()
			normal = &v
		}
		if _, err := s.DB.Exec(ctx,
			`INSERT INTO cart_items (cart_id, product_id, name, slug, unit, qty, selected, price_type, unit_price, normal_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			target.ID, item.ProductID, item.Name, item.Slug, item.Unit, item.Qty, item.Selected,
			string(item.PriceType), item.UnitPrice.String(), normal); err != nil {
			return "", err
		}
	}
	s.touch(ctx, target.ID, s.now().Add(s.ttl()))
	// Expire the guest cart immediately.
	s.touch(ctx, guest.ID, s.now())
	return target.ID.String(), nil
}

// LineItems converts cart lines into pricing input. The snapshot keeps the
// tier price under the recorded tier and the normal price for fallback.
func LineItems(items []Item) []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, len(items))
	for _, it := range items {
		unit := it.UnitPrice
		prices := pricing.PriceSet{Normal: it.NormalPrice}
		switch it.PriceType {
		case pricing.PricePump:
			prices.Pump = &unit
		case pricing.PriceTremie1:
			prices.Tremie1 = &unit
		case pricing.PriceTremie2:
			prices.Tremie2 = &unit
		case pricing.PriceTremie3:
			prices.Tremie3 = &unit
		default:
			prices.Normal = &unit
		}
		lines = append(lines, pricing.LineItem{
			Qty:       it.Qty,
			Selected:  it.Selected,
			PriceType: it.PriceType,
			Prices:    prices,
		})
	}
	return lines
}

func (s *Service) findCart(ctx context.Context, where string, arg any) (Cart, error) {
	row := s.DB.QueryRow(ctx,
		`SELECT id, user_id, anon_id, expires_at FROM carts WHERE `+where+` ORDER BY created_at DESC LIMIT 1`, arg)
	return scanCart(row)
}

func (s *Service) createCart(ctx context.Context, userID *uuid.UUID, anonID *string, expires time.Time) (Cart, error) {
	row := s.DB.QueryRow(ctx,
		`INSERT INTO carts (user_id, anon_id, expires_at) VALUES ($1, $2, $3)
		 RETURNING id, user_id, anon_id, expires_at`, userID, anonID, expires)
	return scanCart(row)
}

func (s *Service) touch(ctx context.Context, cartID uuid.UUID, expires time.Time) {
	_, _ = s.DB.Exec(ctx, `UPDATE carts SET updated_at = now(), expires_at = $2 WHERE id = $1`, cartID, expires)
}

func scanCart(row pgx.Row) (Cart, error) {
	var (
		cart   Cart
		userID pgtype.UUID
		anonID pgtype.Text
	)
	if err := row.Scan(&cart.ID, &userID, &anonID, &cart.ExpiresAt); err != nil {
		return Cart{}, err
	}
	if userID.Valid {
		uid := uuid.UUID(userID.Bytes)
		cart.UserID = &uid
	}
	if anonID.Valid {
		anon := anonID.String
		cart.AnonID = &anon
	}
	return cart, nil
}

func parsePair(cartID, itemID string) (uuid.UUID, uuid.UUID, error) {
	cID, err := uuid.Parse(cartID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	iID, err := uuid.Parse(itemID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse item id: %w", ErrInvalidInput)
	}
	return cID, iID, nil
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return nil
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d
}
