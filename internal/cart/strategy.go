package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/store"
)

// LineStore is the cart persistence strategy: local-only (the durable
// client-local store) or remote-authoritative (backend cart endpoints).
type LineStore interface {
	Load(ctx context.Context) ([]model.CartLine, error)
	Append(ctx context.Context, line model.CartLine) error
	Update(ctx context.Context, line model.CartLine) error
	Remove(ctx context.Context, lineID uuid.UUID) error
	Clear(ctx context.Context) error
}

// --- local ---

type localLineStore struct {
	kv  store.KV
	key string
}

// NewLocalLineStore persists lines as one JSON document in the client-local
// store, under the given key ("cart" or "wishlist"-style keys).
func NewLocalLineStore(kv store.KV, key string) LineStore {
	return &localLineStore{kv: kv, key: key}
}

func (s *localLineStore) Load(ctx context.Context) ([]model.CartLine, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return lines, nil
}

func (s *localLineStore) save(ctx context.Context, lines []model.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func (s *localLineStore) Append(ctx context.Context, line model.CartLine) error {
	lines, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(lines, line))
}

func (s *localLineStore) Update(ctx context.Context, line model.CartLine) error {
	lines, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for i := range lines {
		if lines[i].ID == line.ID {
			lines[i] = line
			break
		}
	}
	return s.save(ctx, lines)
}

func (s *localLineStore) Remove(ctx context.Context, lineID uuid.UUID) error {
	lines, err := s.Load(ctx)
	if err != nil {
		return err
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	return s.save(ctx, kept)
}

func (s *localLineStore) Clear(ctx context.Context) error {
	return s.save(ctx, nil)
}

// --- remote ---

type remoteBackend interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
}

type userIDSource interface {
	Current() (model.User, bool)
}

type remoteLineStore struct {
	api   remoteBackend
	users userIDSource
}

// NewRemoteLineStore keeps the cart on the backend. The backend's add
// endpoint carries no quantity and adds one unit per call, so quantities
// are expressed by repeating it; Update applies the delta against the
// current server-side quantity.
func NewRemoteLineStore(api remoteBackend, users userIDSource) LineStore {
	return &remoteLineStore{api: api, users: users}
}

func (s *remoteLineStore) userID() (string, error) {
	user, ok := s.users.Current()
	if !ok {
		return "", errors.New("no active session")
	}
	return user.ID, nil
}

func (s *remoteLineStore) Load(ctx context.Context) ([]model.CartLine, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	var resp dto.RemoteCartResponse
	if err := s.api.PostJSON(ctx, "/product/getcart", dto.RemoteCartRequest{UserID: userID}, &resp); err != nil {
		return nil, fmt.Errorf("load remote cart: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("load remote cart rejected: %s", resp.Message)
	}

	lines := make([]model.CartLine, 0, len(resp.Cart))
	for _, entry := range resp.Cart {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			// Backend ids are not uuids; derive a stable one.
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(entry.ID))
		}
		qty := entry.Quantity
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, model.CartLine{
			ID:        id,
			ProductID: entry.ProductID,
			Quantity:  qty,
			Snapshot:  model.Snapshot{Name: entry.Name, Price: entry.Price, Image: entry.Image},
		})
	}
	return lines, nil
}

func (s *remoteLineStore) Append(ctx context.Context, line model.CartLine) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	return s.addUnits(ctx, userID, line.ProductID, line.Quantity)
}

// addUnits repeats the quantity-less add call, one unit at a time.
func (s *remoteLineStore) addUnits(ctx context.Context, userID, productID string, units int) error {
	for i := 0; i < units; i++ {
		var resp dto.Envelope
		if err := s.api.PostJSON(ctx, "/product/cart/"+productID, dto.RemoteCartRequest{UserID: userID}, &resp); err != nil {
			return fmt.Errorf("add remote cart line: %w", err)
		}
		if !resp.Success {
			return fmt.Errorf("add remote cart line rejected: %s", resp.Message)
		}
	}
	return nil
}

func (s *remoteLineStore) Update(ctx context.Context, line model.CartLine) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	lines, err := s.Load(ctx)
	if err != nil {
		return err
	}
	current := 0
	for _, l := range lines {
		if l.ID == line.ID {
			current = l.Quantity
			break
		}
	}

	delta := line.Quantity - current
	switch {
	case delta > 0:
		return s.addUnits(ctx, userID, line.ProductID, delta)
	case delta < 0:
		// No decrement endpoint; rebuild the entry at the target quantity.
		if err := s.Remove(ctx, line.ID); err != nil {
			return err
		}
		return s.addUnits(ctx, userID, line.ProductID, line.Quantity)
	}
	return nil
}

func (s *remoteLineStore) Remove(ctx context.Context, lineID uuid.UUID) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	var resp dto.Envelope
	if err := s.api.PostJSON(ctx, "/product/deletecart/"+lineID.String(), dto.RemoteCartRequest{UserID: userID}, &resp); err != nil {
		return fmt.Errorf("remove remote cart line: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("remove remote cart line rejected: %s", resp.Message)
	}
	return nil
}

func (s *remoteLineStore) Clear(ctx context.Context) error {
	lines, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := s.Remove(ctx, line.ID); err != nil {
			return err
		}
	}
	return nil
}
