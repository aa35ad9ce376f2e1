package otp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	challengeKeyPrefix = "otp:challenge:"

	// Redis 键的保留时长比有效期多出的部分，只用于回收存储；
	// 是否过期始终以 ExpiresAt 为准，读取时判断
	storageGrace = 10 * time.Minute
)

var (
	ErrNotFound = errors.New("challenge not found")
	ErrExpired  = errors.New("challenge expired")
	ErrMismatch = errors.New("challenge code mismatch")
)

// Challenge 一个邮箱当前有效的验证码
type Challenge struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store 以邮箱为键保存验证码，每个邮箱同一时刻只有一条
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

// WithClock 替换时钟，测试中用于模拟过期
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func challengeKey(email string) string {
	return challengeKeyPrefix + email
}

// Put 保存新的验证码，覆盖该邮箱之前未使用的验证码
func (s *Store) Put(ctx context.Context, email, code string) (*Challenge, error) {
	issuedAt := s.now()
	ch := &Challenge{
		Email:     email,
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}

	data, err := json.Marshal(ch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := s.rdb.Set(ctx, challengeKey(email), data, s.ttl+storageGrace).Err(); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	return ch, nil
}

// Get 读取当前验证码，不做过期判断
func (s *Store) Get(ctx context.Context, email string) (*Challenge, error) {
	raw, err := s.rdb.Get(ctx, challengeKey(email)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &ch, nil
}

// Verify 校验验证码
// 过期时删除并返回 ErrExpired；不匹配时保留以便在有效期内重试；
// 成功时删除，同一验证码不能被二次使用。
// 读取与删除在 WATCH 事务中完成，并发校验只有一个能成功
func (s *Store) Verify(ctx context.Context, email, code string) error {
	key := challengeKey(email)

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get challenge: %w", err)
		}

		var ch Challenge
		if err := json.Unmarshal(raw, &ch); err != nil {
			return fmt.Errorf("failed to unmarshal challenge: %w", err)
		}

		if s.now().After(ch.ExpiresAt) {
			if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			}); err != nil {
				return err
			}
			return ErrExpired
		}

		if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
			return ErrMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	// 被并发校验或新验证码抢先修改
	if errors.Is(err, redis.TxFailedErr) {
		return ErrNotFound
	}
	return err
}
