// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/polls/testutil"
)

// TestConcurrentVotesSameChoice verifies that simultaneous votes for one
// choice from distinct sessions are all counted. The SQLite pool holds a
// single connection, so the transactions run one after another here; the
// in-database increment itself is pinned by the sqlmock tests in store.
func TestConcurrentVotesSameChoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewPollHandler(db, testutil.GetTestConfig())
	poll := setupVotePoll(t, db)

	const numVoters = 40

	var successCount atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			// No cookie, so each request is its own session
			w := postVote(h, poll.questionID, []string{poll.choices[0]})
			if w.Code == http.StatusSeeOther {
				successCount.Add(1)
			} else {
				t.Errorf("vote failed with status %d: %s", w.Code, w.Body.String())
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := successCount.Load(); got != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, got)
	}
	assertVotes(t, db, poll.choices, numVoters, 0, 0)

	if n := countSessions(t, db); n != numVoters {
		t.Errorf("Expected %d sessions, got %d", numVoters, n)
	}
}

// TestConcurrentVotesMixedChoices spreads simultaneous multi-choice votes
// over all choices and checks the totals
func TestConcurrentVotesMixedChoices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewPollHandler(db, testutil.GetTestConfig())
	poll := setupVotePoll(t, db)

	const numVoters = 30
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			var selected []string
			switch i % 3 {
			case 0:
				selected = []string{poll.choices[0]}
			case 1:
				selected = []string{poll.choices[1], poll.choices[2]}
			default:
				selected = poll.choices
			}

			if w := postVote(h, poll.questionID, selected); w.Code != http.StatusSeeOther {
				t.Errorf("voter %d: status %d", i, w.Code)
			}
		}(i)
	}

	wg.Wait()

	// 10 voters per pattern: {0}, {1,2}, {0,1,2}
	assertVotes(t, db, poll.choices, 20, 20, 20)
}

// TestConcurrentVotesSameSession documents that one session's record is
// best-effort: concurrent requests from the same browser may each count
func TestConcurrentVotesSameSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	h := NewPollHandler(db, testutil.GetTestConfig())
	poll := setupVotePoll(t, db)
	other := setupVotePoll(t, db)

	// Establish a session by voting on another question
	w := postVote(h, other.questionID, []string{other.choices[0]})
	cookie := testutil.ResponseCookie(w, "pollsid")
	if cookie == nil {
		t.Fatal("Expected session cookie")
	}

	const numRequests = 5
	var wg sync.WaitGroup
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w := postVote(h, poll.questionID, []string{poll.choices[0]}, cookie); w.Code != http.StatusSeeOther {
				t.Errorf("status %d", w.Code)
			}
		}()
	}
	wg.Wait()

	votes := testutil.ChoiceVotes(t, db, poll.choices[0])
	if votes < 1 || votes > numRequests {
		t.Errorf("Expected between 1 and %d votes, got %d", numRequests, votes)
	}

	// Once the dust settles the session blocks further votes
	w = postVote(h, poll.questionID, []string{poll.choices[0]}, cookie)
	testutil.AssertStatus(t, w, http.StatusSeeOther)
	if got := testutil.ChoiceVotes(t, db, poll.choices[0]); got != votes {
		t.Errorf("Expected no further votes, went from %d to %d", votes, got)
	}
}
