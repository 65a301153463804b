package web

import (
	"time"

	"contratos/contract"
	"contratos/internal/timeutil"
	"contratos/loader"
)

type FeedView struct {
	Name      string     `json:"name"`
	Available bool       `json:"available"`
	Source    string     `json:"source,omitempty"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
	Rows      int        `json:"rows"`
	Warnings  int        `json:"warnings"`
	Stale     bool       `json:"stale"`
	Message   string     `json:"message,omitempty"`
}

// ContractView is a contract plus the flags a card needs to render it.
type ContractView struct {
	contract.Contract
	Title                   string `json:"title"`
	Current                 bool   `json:"current"`
	MostRecentFlag          bool   `json:"mostRecentFlag"`
	AmendmentInProgressFlag bool   `json:"amendmentInProgressFlag"`
	ExpiresSoon             bool   `json:"expiresSoon"`
}

type PaymentView struct {
	contract.Payment
	Month string `json:"month,omitempty"`
}

func BuildFeedViews(result *loader.Result) []FeedView {
	views := make([]FeedView, 0, len(result.Feeds))
	for _, status := range result.Feeds {
		views = append(views, buildFeedView(status))
	}
	return views
}

func buildFeedView(status loader.FeedStatus) FeedView {
	view := FeedView{
		Name:      status.Name,
		Available: status.Available(),
		Source:    status.Source,
		Rows:      status.Rows,
		Warnings:  len(status.Warnings),
		Stale:     status.Source == loader.SourceSnapshot,
	}
	if !status.FetchedAt.IsZero() {
		fetchedAt := status.FetchedAt
		view.FetchedAt = &fetchedAt
	}
	if !view.Available {
		view.Message = loader.UnavailableMessage
	}
	return view
}

func BuildContractViews(contracts []contract.Contract) []ContractView {
	views := make([]ContractView, 0, len(contracts))
	for _, c := range contracts {
		views = append(views, ContractView{
			Contract:                c,
			Title:                   c.Title(),
			Current:                 c.IsCurrent(),
			MostRecentFlag:          c.IsMostRecent(),
			AmendmentInProgressFlag: c.HasAmendmentInProgress(),
			ExpiresSoon:             c.ExpiresSoon(),
		})
	}
	return views
}

func BuildPaymentViews(payments []contract.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		view := PaymentView{Payment: p}
		if date, ok := p.Date(); ok {
			view.Month = timeutil.MonthKey(date)
		}
		views = append(views, view)
	}
	return views
}
