package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"rentops/internal/app/commands"
	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
)

// IdempotentCommand is implemented by commands that may be retried by clients.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// IdempotencyScope names the property or booking the command acts on.
	IdempotencyScope() string
	ResultPrototype() any // pointer to a value of the handler result type
}

type IdempotencyRecord struct {
	Key string
	// Fingerprint is a digest of the request that produced Payload.
	Fingerprint string
	Payload     []byte
	OccurredAt  time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var (
	errMissingPrototype     = errors.New("middleware: idempotent command requires result prototype")
	ErrIdempotencyKeyReused = errors.New("middleware: idempotency key reused with a different request")
)

// Idempotency replays the stored result for a repeated key. Only successful
// outcomes are stored, so a rejected request can be retried after the caller
// fixes it. Keys are scoped per command, caller and target; a key replayed
// with a different payload is rejected.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := scopedKey(ctx, idCmd)
			fingerprint, err := requestFingerprint(codec, cmd)
			if err != nil {
				return nil, err
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Fingerprint != fingerprint {
					return nil, domainbooking.InvalidCause("idempotency_key", ErrIdempotencyKeyReused)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return derefPrototype(proto), nil
			}
			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			record := IdempotencyRecord{Key: key, Fingerprint: fingerprint, OccurredAt: time.Now().UTC()}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func scopedKey(ctx context.Context, cmd IdempotentCommand) string {
	principal, _ := policies.PrincipalFromContext(ctx)
	return strings.Join([]string{cmd.Key(), principal.ID, cmd.IdempotencyScope(), cmd.IdempotencyKey()}, ":")
}

func requestFingerprint(codec ResultCodec, cmd commands.Command) (string, error) {
	body, err := codec.Encode(cmd)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// derefPrototype turns the decoded *T back into T so typed dispatch matches.
func derefPrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return proto
}
