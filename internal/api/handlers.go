package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/chart"
	"github.com/cleared-dev/hgb/internal/model"
	"github.com/cleared-dev/hgb/internal/posting"
)

var errBadRequest = errors.New("bad request")

const defaultSearchLimit = 10

type createAccountRequest struct {
	Number         string            `json:"number"`
	Name           string            `json:"name"`
	AccountType    model.AccountType `json:"account_type"`
	InitialBalance decimal.Decimal   `json:"initial_balance"`
	Category       string            `json:"category"`
}

type operationRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type operationResponse struct {
	Account     string            `json:"account"`
	AccountName string            `json:"account_name"`
	Operation   string            `json:"operation"`
	Amount      decimal.Decimal   `json:"amount"`
	NewBalance  decimal.Decimal   `json:"new_balance"`
	AccountType model.AccountType `json:"account_type"`
}

type balanceResponse struct {
	Number  string          `json:"account_number"`
	Balance decimal.Decimal `json:"balance"`
}

type standardRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type starterRequest struct {
	InitialBalances map[string]decimal.Decimal `json:"initial_balances"`
}

type searchResponse struct {
	Query      string                `json:"query"`
	Results    []accounts.Suggestion `json:"results"`
	TotalFound int                   `json:"total_found"`
}

type categoryNode struct {
	chart.Category
	Subcategories []chart.Category `json:"subcategories"`
}

type categoriesResponse struct {
	Aktiva            []categoryNode `json:"aktiva"`
	Passiva           []categoryNode `json:"passiva"`
	CatalogCategories []string       `json:"catalog_categories"`
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decode(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) afterWrite(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persisting accounts: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": s.version})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	acct, err := s.accounts.Create(r.Context(), accounts.CreateParams{
		Number:   req.Number,
		Name:     req.Name,
		Type:     req.AccountType,
		Balance:  req.InitialBalance,
		Category: req.Category,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.afterWrite(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := s.accounts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if accts == nil {
		accts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, accts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.accounts.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	acct, err := s.accounts.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Number: acct.Number, Balance: acct.Balance})
}

func (s *Server) handleDebit(w http.ResponseWriter, r *http.Request) {
	s.handleOperation(w, r, "debit", s.accounts.Debit)
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	s.handleOperation(w, r, "credit", s.accounts.Credit)
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request, op string,
	apply func(ctx context.Context, number string, amount decimal.Decimal) (model.Account, error),
) {
	var req operationRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	acct, err := apply(r.Context(), chi.URLParam(r, "number"), req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.afterWrite(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, operationResponse{
		Account:     acct.Number,
		AccountName: acct.Name,
		Operation:   op,
		Amount:      req.Amount,
		NewBalance:  acct.Balance,
		AccountType: acct.Type,
	})
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req posting.Request
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	txn, err := s.posting.Process(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.afterWrite(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req posting.Request
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	pv, err := s.posting.Preview(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

func (s *Server) handleSearchStandard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		query = q.Get("query")
	}
	limit := defaultSearchLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		limit = n
	}

	results, err := s.accounts.Suggest(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: results, TotalFound: len(results)})
}

func (s *Server) handleGetStandard(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	entry, ok := chart.Lookup(number)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s", accounts.ErrUnknownStandardAccount, number))
		return
	}

	sug := accounts.Suggestion{Entry: entry}
	acct, err := s.accounts.Get(r.Context(), number)
	switch {
	case err == nil:
		sug.AlreadyExists = true
		sug.CurrentBalance = &acct.Balance
	case !errors.Is(err, accounts.ErrAccountNotFound):
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func (s *Server) handleCreateStandard(w http.ResponseWriter, r *http.Request) {
	var req standardRequest
	if err := decode(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("initial_balance"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: initial_balance: %v", errBadRequest, err))
			return
		}
		req.InitialBalance = d
	}

	acct, err := s.accounts.CreateFromStandard(r.Context(), chi.URLParam(r, "number"), req.InitialBalance)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.afterWrite(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleStarterPack(w http.ResponseWriter, r *http.Request) {
	var req starterRequest
	if err := decode(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	res := s.accounts.CreateStarterAccounts(r.Context(), req.InitialBalances)
	if len(res.Created) > 0 {
		if err := s.afterWrite(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	msg := fmt.Sprintf("created %d starter accounts", len(res.Created))
	if len(res.Errors) > 0 {
		msg = fmt.Sprintf("created %d of %d starter accounts", len(res.Created), len(res.Created)+len(res.Errors))
	}
	writeMessage(w, http.StatusOK, msg, res)
}

func (s *Server) handleBilanz(w http.ResponseWriter, r *http.Request) {
	periodEnd, err := parsePeriodEnd(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.bilanz.ComputeAt(r.Context(), periodEnd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	v, err := s.bilanz.Validate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.bilanz.Summarize(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleResolution(w http.ResponseWriter, r *http.Request) {
	res, err := s.bilanz.ResolveAccount(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	tree := func(section model.BilanzSide) []categoryNode {
		var nodes []categoryNode
		for _, c := range chart.MainCategories(section) {
			nodes = append(nodes, categoryNode{Category: c, Subcategories: chart.Subcategories(c.Key)})
		}
		return nodes
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Aktiva:            tree(model.BilanzSideAktiva),
		Passiva:           tree(model.BilanzSidePassiva),
		CatalogCategories: chart.CategoryNames(),
	})
}

// parsePeriodEnd reads the optional period_end query parameter (YYYY-MM-DD).
func parsePeriodEnd(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("period_end")
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: period_end must be YYYY-MM-DD", errBadRequest)
	}
	return t, nil
}
