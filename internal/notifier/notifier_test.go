package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
	accountrepo "github.com/smallbiznis/siftbridge/internal/account/repository"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/siftbridge/internal/catalog/repository"
	"github.com/smallbiznis/siftbridge/internal/config"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/identity"
	"github.com/smallbiznis/siftbridge/internal/observability/metrics"
	"github.com/smallbiznis/siftbridge/internal/session"
	settingsdomain "github.com/smallbiznis/siftbridge/internal/settings/domain"
	settingsrepo "github.com/smallbiznis/siftbridge/internal/settings/repository"
	settingsservice "github.com/smallbiznis/siftbridge/internal/settings/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type siftStub struct {
	mu       sync.Mutex
	requests []map[string]any
	response string
}

func (s *siftStub) handler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, body)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	response := s.response
	if response == "" {
		response = `{"status":0,"error_message":"OK"}`
	}
	w.Write([]byte(response))
}

func (s *siftStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *siftStub) last(t *testing.T) map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("no sift requests recorded")
	}
	return s.requests[len(s.requests)-1]
}

type cartStub struct {
	lines map[string]session.CartLine
}

func (c cartStub) Line(ctx context.Context, key string) (session.CartLine, bool) {
	line, ok := c.lines[key]
	return line, ok
}

type fixture struct {
	notifier *Notifier
	db       *gorm.DB
	node     *snowflake.Node
	store    *session.MemoryStore
	sift     *siftStub
	logs     *observer.ObservedLogs
	cart     *cartStub
}

func newFixture(t *testing.T, siftResponse string) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&accountdomain.User{},
		&catalogdomain.Product{},
		&catalogdomain.Category{},
		&catalogdomain.Tag{},
		&settingsdomain.Setting{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	stub := &siftStub{response: siftResponse}
	server := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(server.Close)

	cfg := config.Config{
		TenantPrefix:  "wp_",
		StoreCurrency: "USD",
		SiftAPIKey:    "test-rest-key",
		SiftBaseURL:   server.URL,
	}

	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	accounts := accountrepo.Provide()
	catalog := catalogrepo.Provide()
	settings := settingsservice.New(settingsservice.Params{
		Cfg:  cfg,
		Log:  log,
		Repo: settingsrepo.Provide(conn),
	})

	cart := &cartStub{lines: map[string]session.CartLine{}}

	n := New(Params{
		Cfg:      cfg,
		Log:      log,
		Forward:  config.StaticForwardConfigHolder(config.DefaultForwardConfig()),
		DB:       conn,
		Users:    identity.NewResolver(identity.Params{DB: conn, Log: log, Repo: accounts}),
		Sessions: session.NewResolver(cfg),
		Accounts: accounts,
		Catalog:  catalog,
		Settings: settings,
		Cart:     cart,
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})

	return &fixture{
		notifier: n,
		db:       conn,
		node:     node,
		store:    session.NewMemoryStore(),
		sift:     stub,
		logs:     logs,
		cart:     cart,
	}
}

func (f *fixture) sessionContext() (context.Context, *session.Handle) {
	h := session.NewHandle(nil, f.store, "", nil)
	return session.WithHandle(context.Background(), h), h
}

func (f *fixture) seedUser(t *testing.T, email, login string, meta datatypes.JSONMap) accountdomain.User {
	t.Helper()
	if meta == nil {
		meta = datatypes.JSONMap{}
	}
	user := accountdomain.User{
		ID:           f.node.Generate(),
		Email:        email,
		Login:        login,
		PasswordHash: "x",
		Meta:         meta,
	}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *fixture) seedProduct(t *testing.T, product catalogdomain.Product) catalogdomain.Product {
	t.Helper()
	if product.ID == 0 {
		product.ID = f.node.Generate()
	}
	if product.Slug == "" {
		product.Slug = product.ID.String()
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestFailedLoginUnknownUser(t *testing.T) {
	f := newFixture(t, "")
	ctx, h := f.sessionContext()

	f.notifier.handleLoginFailed(ctx, events.LoginFailed{Login: "bob"})

	if f.sift.count() != 1 {
		t.Fatalf("requests = %d, want 1", f.sift.count())
	}
	body := f.sift.last(t)

	if body["$type"] != "$login" {
		t.Errorf("$type = %v", body["$type"])
	}
	if body["$api_key"] != "test-rest-key" {
		t.Errorf("$api_key = %v", body["$api_key"])
	}
	if body["$login_status"] != "$failure" {
		t.Errorf("$login_status = %v", body["$login_status"])
	}
	if body["$user_id"] != "" {
		t.Errorf("$user_id = %v, want empty", body["$user_id"])
	}

	// Resolving the session id starts one as a side effect.
	if h.Token() == "" {
		t.Fatal("session was not started")
	}
	if body["$session_id"] != "wp_"+h.Token() {
		t.Errorf("$session_id = %v, want wp_%s", body["$session_id"], h.Token())
	}
}

func TestFailedLoginResolvesEmailCaseInsensitive(t *testing.T) {
	f := newFixture(t, "")
	f.seedUser(t, "Ada@Example.com", "ada", nil)
	ctx, _ := f.sessionContext()

	f.notifier.handleLoginFailed(ctx, events.LoginFailed{Login: "ADA@example.COM"})

	body := f.sift.last(t)
	if body["$user_id"] != "ada@example.com" {
		t.Errorf("$user_id = %v, want ada@example.com", body["$user_id"])
	}
}

func TestSuccessfulLogin(t *testing.T) {
	f := newFixture(t, "")
	user := f.seedUser(t, "ada@example.com", "ada", nil)
	ctx, _ := f.sessionContext()

	f.notifier.handleLoginSucceeded(ctx, events.LoginSucceeded{User: &user})

	body := f.sift.last(t)
	if body["$login_status"] != "$success" {
		t.Errorf("$login_status = %v", body["$login_status"])
	}
	if body["$user_id"] != "ada@example.com" {
		t.Errorf("$user_id = %v", body["$user_id"])
	}
}

func TestLogoutUsesSessionUser(t *testing.T) {
	f := newFixture(t, "")
	user := f.seedUser(t, "ada@example.com", "ada", nil)
	ctx, h := f.sessionContext()
	h.Data().UserID = user.ID

	f.notifier.handleLoggedOut(ctx, events.LoggedOut{})

	body := f.sift.last(t)
	if body["$type"] != "$logout" {
		t.Errorf("$type = %v", body["$type"])
	}
	if body["$user_id"] != "ada@example.com" {
		t.Errorf("$user_id = %v", body["$user_id"])
	}
}

func TestAPIErrorLoggedOnceAndSwallowed(t *testing.T) {
	f := newFixture(t, `{"status":51,"error_message":"Invalid API key"}`)
	ctx, _ := f.sessionContext()

	f.notifier.handleLoginFailed(ctx, events.LoginFailed{Login: "bob"})

	if f.sift.count() != 1 {
		t.Fatalf("requests = %d, want 1", f.sift.count())
	}

	errorLogs := f.logs.FilterLevelExact(zap.ErrorLevel)
	if errorLogs.Len() != 1 {
		t.Fatalf("error logs = %d, want exactly 1: %v", errorLogs.Len(), errorLogs.All())
	}
	entry := errorLogs.All()[0]
	if entry.Message != "sift api error" {
		t.Errorf("log message = %q", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["status"] != int64(51) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["error_message"] != "Invalid API key" {
		t.Errorf("error_message field = %v", fields["error_message"])
	}
}

func TestTransportErrorLoggedOnceAndSwallowed(t *testing.T) {
	f := newFixture(t, "")

	// Point the dispatcher at a dead endpoint.
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	f.notifier.cfg.SiftBaseURL = dead.URL

	ctx, _ := f.sessionContext()
	f.notifier.handleLoginFailed(ctx, events.LoginFailed{Login: "bob"})

	errorLogs := f.logs.FilterLevelExact(zap.ErrorLevel)
	if errorLogs.Len() != 1 {
		t.Fatalf("error logs = %d, want exactly 1", errorLogs.Len())
	}
	if errorLogs.All()[0].Message != "sift track failed" {
		t.Errorf("log message = %q", errorLogs.All()[0].Message)
	}
}

func TestForwardFilterMutesEvent(t *testing.T) {
	f := newFixture(t, "")
	f.notifier.forward = config.StaticForwardConfigHolder(config.ForwardConfig{
		Events: []string{"$logout"},
	})

	ctx, _ := f.sessionContext()
	f.notifier.handleLoginFailed(ctx, events.LoginFailed{Login: "bob"})

	if f.sift.count() != 0 {
		t.Fatalf("requests = %d, want 0", f.sift.count())
	}
}

func TestMissingAPIKeySkipsDispatch(t *testing.T) {
	f := newFixture(t, "")
	f.notifier.cfg.SiftAPIKey = ""
	f.notifier.settings = settingsservice.New(settingsservice.Params{
		Cfg:  config.Config{},
		Log:  zap.NewNop(),
		Repo: settingsrepo.Provide(f.db),
	})

	ctx, _ := f.sessionContext()
	f.notifier.handleLoginFailed(ctx, events.LoginFailed{Login: "bob"})

	if f.sift.count() != 0 {
		t.Fatalf("requests = %d, want 0", f.sift.count())
	}
}

func TestNoSessionProviderAborts(t *testing.T) {
	f := newFixture(t, "")

	f.notifier.handleLoginFailed(context.Background(), events.LoginFailed{Login: "bob"})

	if f.sift.count() != 0 {
		t.Fatalf("requests = %d, want 0", f.sift.count())
	}
	if f.logs.FilterMessage("session resolve failed").Len() != 1 {
		t.Fatal("session failure was not logged")
	}
}

func TestAccountCreatedPayload(t *testing.T) {
	f := newFixture(t, "")
	user := f.seedUser(t, "ada@example.com", "ada", datatypes.JSONMap{
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"billing_city": "London",
	})
	ctx, _ := f.sessionContext()

	f.notifier.handleAccountCreated(ctx, events.AccountCreated{UserID: user.ID})

	body := f.sift.last(t)
	if body["$type"] != "$create_account" {
		t.Errorf("$type = %v", body["$type"])
	}
	if body["$user_id"] != "ada@example.com" {
		t.Errorf("$user_id = %v", body["$user_id"])
	}
	if body["$user_email"] != body["$user_id"] {
		t.Errorf("$user_email = %v, want same as $user_id", body["$user_email"])
	}
	if body["$name"] != "Ada Lovelace" {
		t.Errorf("$name = %v", body["$name"])
	}
	billing, ok := body["$billing_address"].(map[string]any)
	if !ok || billing["$city"] != "London" {
		t.Errorf("$billing_address = %v", body["$billing_address"])
	}
	if _, ok := body["$changed_password"]; ok {
		t.Errorf("$changed_password present on create: %v", body)
	}
}

func TestAccountUpdatedChangedPassword(t *testing.T) {
	cases := []struct {
		name      string
		priorHash string
		want      bool
	}{
		{"rotated", "old-hash", true},
		{"unchanged", "x", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "")
			user := f.seedUser(t, "ada@example.com", "ada", nil)
			ctx, _ := f.sessionContext()

			f.notifier.handleAccountUpdated(ctx, events.AccountUpdated{
				UserID:            user.ID,
				PriorPasswordHash: tc.priorHash,
			})

			body := f.sift.last(t)
			if body["$type"] != "$update_account" {
				t.Errorf("$type = %v", body["$type"])
			}
			if body["$changed_password"] != tc.want {
				t.Errorf("$changed_password = %v, want %v", body["$changed_password"], tc.want)
			}
		})
	}
}

func TestItemAddedPrefersVariation(t *testing.T) {
	f := newFixture(t, "")
	parent := f.seedProduct(t, catalogdomain.Product{Title: "Shirt", Price: 10})
	variation := f.seedProduct(t, catalogdomain.Product{
		ParentID: parent.ID,
		Title:    "Shirt - Large",
		Price:    12.50,
	})
	ctx, _ := f.sessionContext()

	f.notifier.handleItemAddedToCart(ctx, events.ItemAddedToCart{
		LineKey:     "line-1",
		ProductID:   parent.ID,
		VariationID: variation.ID,
		Quantity:    2,
	})

	body := f.sift.last(t)
	if body["$type"] != "$add_item_to_cart" {
		t.Errorf("$type = %v", body["$type"])
	}
	item, ok := body["$item"].(map[string]any)
	if !ok {
		t.Fatalf("$item missing: %v", body)
	}
	if item["$item_id"] != variation.ID.String() {
		t.Errorf("$item_id = %v, want variation %s", item["$item_id"], variation.ID)
	}
	if item["$price"] != float64(12_500_000) {
		t.Errorf("$price = %v", item["$price"])
	}
	if item["$quantity"] != float64(2) {
		t.Errorf("$quantity = %v", item["$quantity"])
	}
	if item["$currency_code"] != "USD" {
		t.Errorf("$currency_code = %v", item["$currency_code"])
	}
}

func TestItemRemovedLooksUpLine(t *testing.T) {
	f := newFixture(t, "")
	product := f.seedProduct(t, catalogdomain.Product{Title: "Shirt", Price: 10})
	f.cart.lines["line-1"] = session.CartLine{
		Key:       "line-1",
		ProductID: product.ID,
		Quantity:  3,
	}
	ctx, _ := f.sessionContext()

	f.notifier.handleItemRemovedFromCart(ctx, events.ItemRemovedFromCart{LineKey: "line-1"})

	body := f.sift.last(t)
	if body["$type"] != "$remove_item_from_cart" {
		t.Errorf("$type = %v", body["$type"])
	}
	item := body["$item"].(map[string]any)
	if item["$item_id"] != product.ID.String() {
		t.Errorf("$item_id = %v", item["$item_id"])
	}
	if item["$quantity"] != float64(3) {
		t.Errorf("$quantity = %v", item["$quantity"])
	}
}

func TestItemRemovedUnknownLineSkips(t *testing.T) {
	f := newFixture(t, "")
	ctx, _ := f.sessionContext()

	f.notifier.handleItemRemovedFromCart(ctx, events.ItemRemovedFromCart{LineKey: "missing"})

	if f.sift.count() != 0 {
		t.Fatalf("requests = %d, want 0", f.sift.count())
	}
	if f.logs.FilterMessage("removed cart line not found").Len() != 1 {
		t.Fatal("missing line was not logged")
	}
}

func TestBuildItemFields(t *testing.T) {
	f := newFixture(t, "")
	product := f.seedProduct(t, catalogdomain.Product{
		Title: "Runner",
		SKU:   "RUN-1",
		Price: 29.99,
		Categories: []catalogdomain.Category{
			{ID: f.node.Generate(), Name: "Shoes", Slug: "shoes"},
			{ID: f.node.Generate(), Name: "Sale", Slug: "sale"},
		},
		Tags: []catalogdomain.Tag{
			{ID: f.node.Generate(), Name: "summer", Slug: "summer"},
		},
	})

	item, err := f.notifier.BuildItemFields(context.Background(), product.ID, 0)
	if err != nil {
		t.Fatalf("build item: %v", err)
	}

	if item["$item_id"] != product.ID.String() {
		t.Errorf("$item_id = %v", item["$item_id"])
	}
	if item["$product_title"] != "Runner" {
		t.Errorf("$product_title = %v", item["$product_title"])
	}
	if item["$price"] != int64(29_990_000) {
		t.Errorf("$price = %v", item["$price"])
	}
	if item["$sku"] != "RUN-1" {
		t.Errorf("$sku = %v", item["$sku"])
	}
	if item["$category"] != "Shoes, Sale" {
		t.Errorf("$category = %v", item["$category"])
	}
	if item["$quantity"] != 1 {
		t.Errorf("$quantity = %v, want default 1", item["$quantity"])
	}
	tags, ok := item["$tags"].([]catalogdomain.Tag)
	if !ok || len(tags) != 1 || tags[0].Name != "summer" {
		t.Errorf("$tags = %v", item["$tags"])
	}
}

func TestBuildItemFieldsBareProduct(t *testing.T) {
	f := newFixture(t, "")
	product := f.seedProduct(t, catalogdomain.Product{Title: "Plain", Price: 5})

	item, err := f.notifier.BuildItemFields(context.Background(), product.ID, 4)
	if err != nil {
		t.Fatalf("build item: %v", err)
	}

	for _, key := range []string{"$sku", "$category", "$tags"} {
		if _, ok := item[key]; ok {
			t.Errorf("%s present on bare product: %v", key, item)
		}
	}
	if item["$quantity"] != 4 {
		t.Errorf("$quantity = %v", item["$quantity"])
	}
}

func TestBuildItemFieldsUnknownProduct(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.notifier.BuildItemFields(context.Background(), f.node.Generate(), 1)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}
