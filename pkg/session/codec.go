package session

import (
	"encoding/json"
	"errors"
	"time"
)

// wireRecord is the serialized form of a Record. Timestamps travel as epoch
// milliseconds so the stored shape is independent of any language's date
// type.
type wireRecord struct {
	Token        string `json:"token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	SchoolID     string `json:"school_id"`
	CreatedAt    int64  `json:"created_at"`
	LastActivity int64  `json:"last_activity"`
	ExpiresAt    int64  `json:"expires_at"`
	UserAgent    string `json:"user_agent,omitempty"`
	IPAddress    string `json:"ip_address,omitempty"`
}

func encodeRecord(r *Record) ([]byte, error) {
	w := wireRecord{
		Token:        r.Token,
		UserID:       r.UserID,
		Email:        r.Email,
		Role:         string(r.Role),
		SchoolID:     r.SchoolID,
		CreatedAt:    r.CreatedAt.UnixMilli(),
		LastActivity: r.LastActivity.UnixMilli(),
		ExpiresAt:    r.ExpiresAt.UnixMilli(),
		UserAgent:    r.UserAgent,
		IPAddress:    r.IPAddress,
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Join(ErrMalformedRecord, err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Join(ErrMalformedRecord, err)
	}

	// A record without its token or owner cannot be trusted.
	if w.Token == "" || w.UserID == "" {
		return nil, ErrMalformedRecord
	}

	return &Record{
		Token:        w.Token,
		UserID:       w.UserID,
		Email:        w.Email,
		Role:         Role(w.Role),
		SchoolID:     w.SchoolID,
		CreatedAt:    time.UnixMilli(w.CreatedAt),
		LastActivity: time.UnixMilli(w.LastActivity),
		ExpiresAt:    time.UnixMilli(w.ExpiresAt),
		UserAgent:    w.UserAgent,
		IPAddress:    w.IPAddress,
	}, nil
}
