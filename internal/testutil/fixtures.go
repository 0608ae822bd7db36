package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/furqan-uddin/SkillForge-Backend/internal/ai"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/utils"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of users made by CreateTestUser.
const DefaultPassword = "Test123456"

// CreateTestUser inserts a user with DefaultPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(DefaultPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// WeeksMap builds n weeks in the {"Week N": [...]} shape with four steps each.
func WeeksMap(n int) map[string]any {
	out := make(map[string]any, n)
	for w := 1; w <= n; w++ {
		steps := make([]any, 0, 4)
		for s := 1; s <= 4; s++ {
			steps = append(steps, fmt.Sprintf("Week %d step %d", w, s))
		}
		out[fmt.Sprintf("Week %d", w)] = steps
	}
	return out
}

// FakeCompleter replays scripted completions. Queued replies are used first,
// then Reply is returned for every further call.
type FakeCompleter struct {
	mu       sync.Mutex
	Queue    []string
	Reply    string
	Err      error
	Requests []ai.Request
}

func (f *FakeCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Queue) > 0 {
		next := f.Queue[0]
		f.Queue = f.Queue[1:]
		return next, nil
	}
	return f.Reply, nil
}

// Calls returns how many completions were requested.
func (f *FakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

func (f *FakeCompleter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queue = nil
	f.Reply = ""
	f.Err = nil
	f.Requests = nil
}
