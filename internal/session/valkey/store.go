package sessionvalkey

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/twitch-login/internal/serviceerr"
)

type store struct {
	valkey valkey.Client
	prefix string
}

func newStore(valkeyClient valkey.Client, prefix string) *store {
	prefix = strings.TrimSuffix(prefix, ":")
	return &store{
		valkey: valkeyClient,
		prefix: prefix,
	}
}

func (s *store) Get(ctx context.Context, objectType ObjectType, objectID string, decodeInto any) error {
	bytes, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(objectType, objectID)).Build()).AsBytes()
	if err != nil {
		return s.readErr("get", err)
	}

	return s.decode(bytes, decodeInto)
}

// GetDel reads and removes the key in a single command.
func (s *store) GetDel(ctx context.Context, objectType ObjectType, objectID string, decodeInto any) error {
	bytes, err := s.valkey.Do(ctx, s.valkey.B().Getdel().Key(s.key(objectType, objectID)).Build()).AsBytes()
	if err != nil {
		return s.readErr("getdel", err)
	}

	return s.decode(bytes, decodeInto)
}

// Set stores val until ttl elapses. Values with a non positive ttl are not
// written.
func (s *store) Set(ctx context.Context, objectType ObjectType, id string, val any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	bytes, err := s.encode(val)
	if err != nil {
		return fmt.Errorf("encoding data: %w", err)
	}

	seconds := int64(math.Ceil(ttl.Seconds()))
	cmd := s.valkey.B().Set().Key(s.key(objectType, id)).Value(valkey.BinaryString(bytes)).ExSeconds(seconds).Build()
	if err := s.valkey.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

// Destroy removes the key. It returns serviceerr.ErrNotFound if nothing was
// deleted.
func (s *store) Destroy(ctx context.Context, objectType ObjectType, id string) error {
	n, err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key(objectType, id)).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}
	if n == 0 {
		return serviceerr.ErrNotFound
	}

	return nil
}

func (s *store) readErr(command string, err error) error {
	if valkey.IsValkeyNil(err) {
		return serviceerr.ErrNotFound
	}

	return fmt.Errorf("executing %s command: %w", command, err)
}

func (s *store) key(objectType ObjectType, objectID string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, objectType, objectID)
}

func (s *store) encode(v any) ([]byte, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}

	return bytes, nil
}

func (s *store) decode(data []byte, into any) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}

	return nil
}
