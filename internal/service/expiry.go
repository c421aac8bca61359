package service

import (
	"context"
	"time"
)

// ExpireOverdueCards moves every card whose expiry month has passed into
// EXPIRED. Scheduled daily; safe to run at any time since the update is a
// single conditional statement.
func (s *Service) ExpireOverdueCards(ctx context.Context) {
	expired, err := s.store.ExpireOverdueCards(ctx, time.Now())
	if err != nil {
		s.log.Errorf("Card expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		s.log.Infof("Card expiry sweep: %d cards expired", expired)
	}
}
