// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/runtime"
)

type Ledger struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Ledger {
	return &Ledger{rt}
}

func (l *Ledger) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	owner, err := l.rt.Owner()
	if err != nil {
		return err
	}
	tokenAddr, err := l.rt.TokenAddress()
	if err != nil {
		return err
	}
	rate, err := l.rt.AnnualYield()
	if err != nil {
		return err
	}
	staked, err := l.rt.TotalStaked()
	if err != nil {
		return err
	}
	treasury, err := l.rt.TreasuryBalance()
	if err != nil {
		return err
	}
	addrs, err := l.rt.ParticipantAddresses()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Status{
		Owner:            owner,
		Token:            tokenAddr,
		AnnualYield:      rate,
		TotalStaked:      bnry.FormatTokens(staked),
		TreasuryBalance:  bnry.FormatTokens(treasury),
		ParticipantCount: len(addrs),
		Time:             l.rt.Now(),
	})
}

func (l *Ledger) handleGetParticipants(w http.ResponseWriter, _ *http.Request) error {
	addrs, err := l.rt.ParticipantAddresses()
	if err != nil {
		return err
	}
	if addrs == nil {
		addrs = []bnry.Address{}
	}
	return restutil.WriteJSON(w, addrs)
}

func (l *Ledger) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := bnry.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	linear := req.URL.Query().Get("linear") == "true"

	p, current, err := l.rt.ParticipantBalance(addr, linear)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertParticipant(addr, p, current))
}

func (l *Ledger) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return restutil.BadRequest(err)
	}
	return l.writeReceipt(w)(l.rt.Stake(req.Context(), body.Account, amount))
}

func (l *Ledger) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return restutil.BadRequest(err)
	}
	return l.writeReceipt(w)(l.rt.Withdraw(req.Context(), body.Account, amount))
}

func (l *Ledger) handleFundTreasury(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return restutil.BadRequest(err)
	}
	return l.writeReceipt(w)(l.rt.FundTreasury(req.Context(), body.Account, amount))
}

func (l *Ledger) handleChangeAnnualYield(w http.ResponseWriter, req *http.Request) error {
	var body YieldRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	return l.writeReceipt(w)(l.rt.ChangeAnnualYield(req.Context(), body.Caller, body.Percent))
}

func (l *Ledger) handleUpdateTimestamp(w http.ResponseWriter, req *http.Request) error {
	var body TimestampRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	return l.writeReceipt(w)(l.rt.UpdateTimestamp(req.Context(), body.Caller, body.Account, body.Timestamp))
}

func (l *Ledger) writeReceipt(w http.ResponseWriter) func(*runtime.Receipt, error) error {
	return func(r *runtime.Receipt, err error) error {
		// a receipt with an error means the operation committed but its events were not recorded
		if err != nil && r == nil {
			return restutil.Reverted(err)
		}
		return restutil.WriteJSON(w, convertReceipt(r))
	}
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /ledger").HandlerFunc(restutil.WrapHandlerFunc(l.handleGetStatus))
	sub.Path("/participants").Methods(http.MethodGet).Name("GET /ledger/participants").HandlerFunc(restutil.WrapHandlerFunc(l.handleGetParticipants))
	sub.Path("/participants/{address}").Methods(http.MethodGet).Name("GET /ledger/participants/{address}").HandlerFunc(restutil.WrapHandlerFunc(l.handleGetParticipant))
	sub.Path("/stake").Methods(http.MethodPost).Name("POST /ledger/stake").HandlerFunc(restutil.WrapHandlerFunc(l.handleStake))
	sub.Path("/withdraw").Methods(http.MethodPost).Name("POST /ledger/withdraw").HandlerFunc(restutil.WrapHandlerFunc(l.handleWithdraw))
	sub.Path("/treasury").Methods(http.MethodPost).Name("POST /ledger/treasury").HandlerFunc(restutil.WrapHandlerFunc(l.handleFundTreasury))
	sub.Path("/yield").Methods(http.MethodPost).Name("POST /ledger/yield").HandlerFunc(restutil.WrapHandlerFunc(l.handleChangeAnnualYield))
	sub.Path("/timestamp").Methods(http.MethodPost).Name("POST /ledger/timestamp").HandlerFunc(restutil.WrapHandlerFunc(l.handleUpdateTimestamp))
}
