package chat

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	dbpkg "github.com/finbot-app/finbot/internal/db"
	"github.com/finbot-app/finbot/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	dsn := fmt.Sprintf("file:chattest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	svc := NewService(conn)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.intn = func(int) int { return 0 }
	return svc, &now
}

func userMsg(content string) models.Message {
	return models.Message{ID: content, Role: models.RoleUser, Content: content, Timestamp: time.Now()}
}

func TestSaveChat_InsertThenUpdate(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	firstSave := *now
	id, err := svc.SaveChat(ctx, 1, SaveInput{
		Title:    "Stocks",
		Messages: []models.Message{userMsg("tell me about stocks")},
		Model:    "gpt-4o",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	*now = now.Add(time.Hour)
	secondMsgs := []models.Message{userMsg("tell me about stocks"), userMsg("and bonds")}
	id2, err := svc.SaveChat(ctx, 1, SaveInput{ID: id, Title: "Stocks", Messages: secondMsgs, Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if id2 != id {
		t.Fatalf("upsert must keep the id, got %q vs %q", id2, id)
	}

	chats, errList := svc.GetUserChats(ctx, 1)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(chats) != 1 {
		t.Fatalf("expected exactly one document, got %d", len(chats))
	}
	if !chats[0].UpdatedAt.After(firstSave) {
		t.Fatalf("updated_at must reflect the second save, got %v", chats[0].UpdatedAt)
	}
	got, errDecode := models.DecodeMessages(chats[0].Messages)
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(got) != 2 || got[1].Content != "and bonds" {
		t.Fatalf("messages must equal the second call's input, got %+v", got)
	}
}

func TestSaveChat_ClientIDFallbackInsert(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// A client-generated id that matches nothing inserts a new document
	// reachable under that id afterwards.
	id, err := svc.SaveChat(ctx, 1, SaveInput{
		ID:       "client-abc",
		Messages: []models.Message{userMsg("hello")},
		Model:    "gpt-4o",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "client-abc" {
		t.Fatalf("insert must assign a server id")
	}

	doc, errGet := svc.GetChatByID(ctx, 1, "client-abc")
	if errGet != nil {
		t.Fatalf("get by client id: %v", errGet)
	}
	if doc.ID != id || doc.ClientID != "client-abc" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	// Saving under the client id again updates in place.
	if _, err := svc.SaveChat(ctx, 1, SaveInput{ID: "client-abc", Messages: []models.Message{userMsg("hello again")}, Model: "gpt-4o"}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	chats, errList := svc.GetUserChats(ctx, 1)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(chats) != 1 {
		t.Fatalf("expected one document, got %d", len(chats))
	}
}

func TestSaveChat_DerivesTitleAndRegion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	long := "What is the long-term outlook for renewable energy utility stocks in Europe?"
	id, err := svc.SaveChat(ctx, 1, SaveInput{Messages: []models.Message{userMsg(long)}, Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, errGet := svc.GetChatByID(ctx, 1, id)
	if errGet != nil {
		t.Fatalf("get: %v", errGet)
	}
	want := string([]rune(long)[:50]) + "..."
	if doc.Title != want {
		t.Fatalf("title = %q, want %q", doc.Title, want)
	}
	if doc.Region != DefaultRegion {
		t.Fatalf("region = %q, want %q", doc.Region, DefaultRegion)
	}

	id2, err := svc.SaveChat(ctx, 1, SaveInput{Messages: nil, Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	doc2, errGet := svc.GetChatByID(ctx, 1, id2)
	if errGet != nil {
		t.Fatalf("get: %v", errGet)
	}
	if doc2.Title != DefaultTitle {
		t.Fatalf("title = %q, want %q", doc2.Title, DefaultTitle)
	}
}

func TestGetUserChats_NewestFirst(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	older, err := svc.SaveChat(ctx, 1, SaveInput{Title: "older", Messages: nil, Model: "m"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	*now = now.Add(time.Minute)
	newer, err := svc.SaveChat(ctx, 1, SaveInput{Title: "newer", Messages: nil, Model: "m"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	chats, errList := svc.GetUserChats(ctx, 1)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(chats) != 2 || chats[0].ID != newer || chats[1].ID != older {
		t.Fatalf("expected newest-first order, got %+v", chats)
	}
}

func TestSearchUserChats_CaseInsensitiveAndOwnerScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveChat(ctx, 1, SaveInput{Title: "Tech Stocks Outlook", Messages: nil, Model: "m"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.SaveChat(ctx, 1, SaveInput{Title: "Bond ladder basics", Messages: nil, Model: "m"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.SaveChat(ctx, 2, SaveInput{Title: "stocks for someone else", Messages: nil, Model: "m"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	chats, err := svc.SearchUserChats(ctx, 1, "STOCKS")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(chats) != 1 || chats[0].Title != "Tech Stocks Outlook" {
		t.Fatalf("expected the owner's matching chat only, got %+v", chats)
	}

	chats, err = svc.SearchUserChats(ctx, 1, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("empty query must return the full list, got %d", len(chats))
	}

	chats, err = svc.SearchUserChats(ctx, 1, "crypto")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected no matches, got %+v", chats)
	}
}

func TestOwnershipNeverLeaks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.SaveChat(ctx, 1, SaveInput{Title: "mine", Messages: nil, Model: "m"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := svc.GetChatByID(ctx, 2, id); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Fatalf("get by non-owner: expected ErrNotFoundOrUnauthorized, got %v", err)
	}
	if err := svc.DeleteChat(ctx, 2, id); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Fatalf("delete by non-owner: expected ErrNotFoundOrUnauthorized, got %v", err)
	}
	if _, err := svc.GetChatByID(ctx, 2, "no-such-id"); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Fatalf("get missing: expected ErrNotFoundOrUnauthorized, got %v", err)
	}

	// The owner still sees the document.
	if _, err := svc.GetChatByID(ctx, 1, id); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if err := svc.DeleteChat(ctx, 1, id); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.DeleteChat(ctx, 1, id); !errors.Is(err, ErrNotFoundOrUnauthorized) {
		t.Fatalf("second delete: expected ErrNotFoundOrUnauthorized, got %v", err)
	}
}

func TestGetFrequentQueries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var msgs []models.Message
	for _, q := range []string{"a", "a", "b", "c", "c", "c"} {
		msgs = append(msgs, userMsg(q))
	}
	if _, err := svc.SaveChat(ctx, 1, SaveInput{Messages: msgs, Model: "m"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	queries, err := svc.GetFrequentQueries(ctx, 1, 4)
	if err != nil {
		t.Fatalf("frequent queries: %v", err)
	}
	if !reflect.DeepEqual(queries, []string{"c", "a", "b"}) {
		t.Fatalf("expected [c a b], got %v", queries)
	}

	queries, err = svc.GetFrequentQueries(ctx, 1, 2)
	if err != nil {
		t.Fatalf("frequent queries: %v", err)
	}
	if !reflect.DeepEqual(queries, []string{"c", "a"}) {
		t.Fatalf("expected [c a], got %v", queries)
	}
}

func TestGetFrequentQueries_EmptyHistory(t *testing.T) {
	svc, _ := newTestService(t)
	queries, err := svc.GetFrequentQueries(context.Background(), 1, 4)
	if err != nil {
		t.Fatalf("frequent queries: %v", err)
	}
	if len(queries) != 0 {
		t.Fatalf("expected empty result, got %v", queries)
	}
}

func TestGetPersonalizedSuggestions_Structure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msgs := []models.Message{
		userMsg("what stocks should I buy"),
		userMsg("is bitcoin a good crypto investment"),
		userMsg("how does inflation affect bonds"),
	}
	if _, err := svc.SaveChat(ctx, 1, SaveInput{Messages: msgs, Model: "m"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, limit := range []int{1, 4, 10} {
		suggestions, err := svc.GetPersonalizedSuggestions(ctx, 1, limit)
		if err != nil {
			t.Fatalf("suggestions(limit=%d): %v", limit, err)
		}
		if len(suggestions) > limit {
			t.Fatalf("limit=%d: got %d suggestions", limit, len(suggestions))
		}
		seen := make(map[string]bool)
		for _, s := range suggestions {
			if s == "" {
				t.Fatalf("empty suggestion")
			}
			if seen[s] {
				t.Fatalf("duplicate suggestion %q", s)
			}
			seen[s] = true
		}
	}
}

func TestGetPersonalizedSuggestions_EmptyHistoryPadsWithGenerics(t *testing.T) {
	svc, _ := newTestService(t)

	suggestions, err := svc.GetPersonalizedSuggestions(context.Background(), 1, 4)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(suggestions) != 4 {
		t.Fatalf("expected the generic pool to fill 4 slots, got %d", len(suggestions))
	}
	for _, s := range suggestions {
		found := false
		for _, g := range genericSuggestions {
			if s == g {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("unexpected non-generic suggestion %q", s)
		}
	}
}
