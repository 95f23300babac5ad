package access

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/access-service/internal/domain"
)

const modeSnapshotKey = "access:availability_mode"

type modeSnapshot struct {
	Mode              domain.Mode `json:"mode"`
	Reason            string      `json:"reason,omitempty"`
	EstimatedDuration string      `json:"estimated_duration,omitempty"`
	EmergencyContact  string      `json:"emergency_contact,omitempty"`
	ActivatedAt       time.Time   `json:"activated_at"`
	ActivatedBy       string      `json:"activated_by,omitempty"`
}

// redisModeStore keeps the latest availability-mode record in Redis so a
// restart under a restrictive mode resumes in that mode.
type redisModeStore struct {
	client *redis.Client
}

// NewRedisModeStore builds a ModeStore over the given client.
func NewRedisModeStore(client *redis.Client) ModeStore {
	return &redisModeStore{client: client}
}

func (s *redisModeStore) Save(ctx context.Context, mode domain.AvailabilityMode) error {
	payload, err := json.Marshal(modeSnapshot{
		Mode:              mode.Mode,
		Reason:            mode.Reason,
		EstimatedDuration: mode.EstimatedDuration,
		EmergencyContact:  mode.EmergencyContact,
		ActivatedAt:       mode.ActivatedAt,
		ActivatedBy:       mode.ActivatedBy,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, modeSnapshotKey, payload, 0).Err()
}

func (s *redisModeStore) Load(ctx context.Context) (*domain.AvailabilityMode, error) {
	raw, err := s.client.Get(ctx, modeSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot modeSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &domain.AvailabilityMode{
		Mode:              snapshot.Mode,
		Reason:            snapshot.Reason,
		EstimatedDuration: snapshot.EstimatedDuration,
		EmergencyContact:  snapshot.EmergencyContact,
		ActivatedAt:       snapshot.ActivatedAt,
		ActivatedBy:       snapshot.ActivatedBy,
	}, nil
}
