// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps per-browser state in the database.

A session is identified by a random key stored in an HttpOnly cookie. Its
data is a small JSON document in the web_session table holding:

  - voted_questions: the VoteRecord used to stop repeat votes
  - messages: flash messages shown once on the next rendered page

# Usage

	s, err := sessions.Load(ctx, r)
	voted := s.VoteRecord()
	if !voted.Has(questionID) {
		// ...
		s.SetVoteRecord(voted.With(questionID))
	}
	s.AddMessage(models.LevelSuccess, "Thanks for voting!")
	err = sessions.Save(ctx, w, s)

Load never fails for a bad, unknown or expired cookie; it returns a fresh
session instead. Save writes only modified sessions and refreshes the
expiry each time.

There is no locking between concurrent requests of the same session: the
last Save wins.

# Expiry

Sessions live for the configured TTL after their last save. PurgeExpired
deletes stale rows; main runs it periodically.
*/
package session
