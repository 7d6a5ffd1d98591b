package probe

import (
	"testing"

	"github.com/okian/providex/internal/domain/model"
)

func TestVerifyOrder(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		wantErr bool
	}{
		{"empty", nil, false},
		{"single", []float64{3}, false},
		{"descending with ties", []float64{5, 5, 4.5, 4.5, 0}, false},
		{"rise", []float64{5, 4, 4.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := make([]model.Provider, len(tt.ratings))
			for i, r := range tt.ratings {
				ps[i] = model.Provider{ID: i + 1, Rating: r}
			}
			if err := verifyOrder(ps); (err != nil) != tt.wantErr {
				t.Fatalf("verifyOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyActive(t *testing.T) {
	yes, no := true, false
	ps := []model.Provider{{ID: 1, Active: true}, {ID: 2, Active: true}}

	if err := verifyActive(ps, nil); err != nil {
		t.Fatalf("nil filter: %v", err)
	}
	if err := verifyActive(ps, &yes); err != nil {
		t.Fatalf("active filter: %v", err)
	}
	if err := verifyActive(ps, &no); err == nil {
		t.Fatal("expected violation for inactive filter")
	}
}

func TestPopularityLedger(t *testing.T) {
	p := func(id int, rating float64) model.Provider { return model.Provider{ID: id, Rating: rating} }

	tests := []struct {
		name    string
		answers [][]model.Provider
		wantErr []bool
	}{
		{
			name:    "fresh ties in id order",
			answers: [][]model.Provider{{p(1, 5), p(2, 5), p(3, 4)}},
			wantErr: []bool{false},
		},
		{
			name:    "fresh ties out of id order",
			answers: [][]model.Provider{{p(2, 5), p(1, 5)}},
			wantErr: []bool{true},
		},
		{
			name: "less shown provider moves ahead",
			answers: [][]model.Provider{
				{p(1, 5)},
				{p(2, 5), p(1, 5)},
			},
			wantErr: []bool{false, false},
		},
		{
			name: "more shown provider stays ahead",
			answers: [][]model.Provider{
				{p(1, 5)},
				{p(1, 5), p(2, 5)},
			},
			wantErr: []bool{false, true},
		},
		{
			name: "popularity only matters within a rating",
			answers: [][]model.Provider{
				{p(1, 5)},
				{p(1, 5), p(2, 4)},
			},
			wantErr: []bool{false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newPopularityLedger()
			for i, answer := range tt.answers {
				if err := l.check(answer); (err != nil) != tt.wantErr[i] {
					t.Fatalf("answer %d: check() error = %v, wantErr %v", i, err, tt.wantErr[i])
				}
			}
		})
	}
}

func TestExposure(t *testing.T) {
	e := newExposure()
	e.record("rating:5", []model.Provider{{ID: 1}, {ID: 2}})
	e.record("rating:5", []model.Provider{{ID: 2}, {ID: 1}})
	e.record("", nil)
	e.record("country:uk", []model.Provider{{ID: 2}})

	if got := e.distinctLeaders(); got != 2 {
		t.Fatalf("distinctLeaders = %d, want 2", got)
	}
	if got := e.leaders["rating:5"]; got[1] != 1 || got[2] != 1 {
		t.Fatalf("rating:5 leaders = %v", got)
	}
}

func TestQueryURL(t *testing.T) {
	yes := true
	tests := []struct {
		q    probeQuery
		want string
	}{
		{probeQuery{}, "http://x/providers"},
		{probeQuery{traits: "rating:5"}, "http://x/providers?traits=rating%3A5"},
		{probeQuery{active: &yes, limit: 3}, "http://x/providers?active=true&limit=3"},
	}
	for _, tt := range tests {
		if got := tt.q.url("http://x"); got != tt.want {
			t.Errorf("url() = %q, want %q", got, tt.want)
		}
	}
}

func TestBuildQueries(t *testing.T) {
	got := buildQueries(&Config{Traits: []string{"a:b", "c:d"}, Limit: 4})
	if len(got) != 6 {
		t.Fatalf("got %d queries, want 6", len(got))
	}
	if got[0].active != nil || *got[1].active != true || *got[2].active != false {
		t.Fatalf("active cycle wrong: %+v", got[:3])
	}
	for _, q := range got {
		if q.limit != 4 {
			t.Fatalf("limit not propagated: %+v", q)
		}
	}
	if len(buildQueries(&Config{})) != len(DefaultTraits)*3 {
		t.Fatal("empty trait list should fall back to DefaultTraits")
	}
}
