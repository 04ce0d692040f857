// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/runtime"
)

type Info struct {
	Address     bnry.Address `json:"address"`
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Decimals    uint8        `json:"decimals"`
	TotalSupply string       `json:"totalSupply"`
}

type Balance struct {
	Address bnry.Address `json:"address"`
	Balance string       `json:"balance"`
}

type Allowance struct {
	Owner     bnry.Address `json:"owner"`
	Spender   bnry.Address `json:"spender"`
	Allowance string       `json:"allowance"`
}

// TransferRequest is used by mint, approve and transfer. For approve From is
// the owner and To the spender; for mint From is the minting owner.
type TransferRequest struct {
	From   bnry.Address `json:"from"`
	To     bnry.Address `json:"to"`
	Amount string       `json:"amount"`
}

type Result struct {
	Op   string `json:"op"`
	Time uint64 `json:"time"`
}

type Token struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Token {
	return &Token{rt}
}

func (t *Token) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	supply, err := t.rt.TotalSupply()
	if err != nil {
		return err
	}
	tk := t.rt.Token()
	return restutil.WriteJSON(w, &Info{
		Address:     tk.Address(),
		Name:        tk.Name(),
		Symbol:      tk.Symbol(),
		Decimals:    tk.Decimals(),
		TotalSupply: bnry.FormatTokens(supply),
	})
}

func (t *Token) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := bnry.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	bal, err := t.rt.TokenBalance(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Balance{Address: addr, Balance: bnry.FormatTokens(bal)})
}

func (t *Token) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := bnry.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	spender, err := bnry.ParseAddress(mux.Vars(req)["spender"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "spender"))
	}
	v, err := t.rt.Allowance(owner, spender)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Allowance{Owner: owner, Spender: spender, Allowance: bnry.FormatTokens(v)})
}

type operation func(req *http.Request, from, to bnry.Address, amount *big.Int) (*runtime.Receipt, error)

func (t *Token) handleOperation(op operation) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body TransferRequest
		if err := restutil.ParseJSON(req.Body, &body); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "body"))
		}
		amount, err := bnry.ParseTokens(body.Amount)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "amount"))
		}
		r, err := op(req, body.From, body.To, amount)
		if r == nil {
			return restutil.Reverted(err)
		}
		return restutil.WriteJSON(w, &Result{Op: r.Op, Time: r.Time})
	}
}

func (t *Token) mint(req *http.Request, from, to bnry.Address, amount *big.Int) (*runtime.Receipt, error) {
	return t.rt.Mint(req.Context(), from, to, amount)
}

func (t *Token) approve(req *http.Request, from, to bnry.Address, amount *big.Int) (*runtime.Receipt, error) {
	return t.rt.Approve(req.Context(), from, to, amount)
}

func (t *Token) transfer(req *http.Request, from, to bnry.Address, amount *big.Int) (*runtime.Receipt, error) {
	return t.rt.Transfer(req.Context(), from, to, amount)
}

func (t *Token) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /token").HandlerFunc(restutil.WrapHandlerFunc(t.handleGetInfo))
	sub.Path("/mint").Methods(http.MethodPost).Name("POST /token/mint").HandlerFunc(restutil.WrapHandlerFunc(t.handleOperation(t.mint)))
	sub.Path("/approve").Methods(http.MethodPost).Name("POST /token/approve").HandlerFunc(restutil.WrapHandlerFunc(t.handleOperation(t.approve)))
	sub.Path("/transfer").Methods(http.MethodPost).Name("POST /token/transfer").HandlerFunc(restutil.WrapHandlerFunc(t.handleOperation(t.transfer)))
	sub.Path("/{address}").Methods(http.MethodGet).Name("GET /token/{address}").HandlerFunc(restutil.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{address}/allowance/{spender}").Methods(http.MethodGet).Name("GET /token/{address}/allowance/{spender}").HandlerFunc(restutil.WrapHandlerFunc(t.handleGetAllowance))
}
