package api

import (
	"strconv"

	"github.com/MixinNetwork/registry/mtg"
	"github.com/MixinNetwork/registry/nft"
	"github.com/MixinNetwork/registry/storage"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	store    storage.Store
	contract *nft.Contract
	grp      *mtg.Group
}

func (h *Handler) env() (nft.Env, error) {
	tick, err := h.grp.LastTick()
	if err != nil {
		return nft.Env{}, err
	}
	return nft.Env{Block: nft.BlockInfo{Height: tick.Height, Time: tick.Time}}, nil
}

// view runs a query in a read-only transition and writes its result.
func (h *Handler) view(c *gin.Context, query func(txn storage.Txn) (interface{}, error)) {
	var data interface{}
	err := h.store.View(func(txn storage.Txn) error {
		var err error
		data, err = query(txn)
		return err
	})
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, data)
}

func (h *Handler) ContractDetails(c *gin.Context) {
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.ContractDetails(txn)
	})
}

func (h *Handler) Version(c *gin.Context) {
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.Version(txn)
	})
}

func (h *Handler) Minter(c *gin.Context) {
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.Minter(txn)
	})
}

func (h *Handler) NumTokens(c *gin.Context) {
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.NumTokens(txn)
	})
}

func (h *Handler) AllTokens(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.AllTokens(txn, c.Query("start_after"), limit)
	})
}

func (h *Handler) Tokens(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	owner, err := nft.CanonicalAddress(c.Param("owner"))
	if err != nil {
		InvalidParam(c, err.Error())
		return
	}
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.Tokens(txn, owner, c.Query("start_after"), limit)
	})
}

func (h *Handler) Token(c *gin.Context) {
	env, err := h.env()
	if err != nil {
		Failure(c, err)
		return
	}
	includeExpired := c.Query("include_expired") == "true"
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.AllNftInfo(txn, env, c.Param("id"), includeExpired)
	})
}

func (h *Handler) Approvals(c *gin.Context) {
	env, err := h.env()
	if err != nil {
		Failure(c, err)
		return
	}
	includeExpired := c.Query("include_expired") == "true"
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.Approvals(txn, env, c.Param("id"), includeExpired)
	})
}

func (h *Handler) Approval(c *gin.Context) {
	env, err := h.env()
	if err != nil {
		Failure(c, err)
		return
	}
	spender, err := nft.CanonicalAddress(c.Param("spender"))
	if err != nil {
		InvalidParam(c, err.Error())
		return
	}
	includeExpired := c.Query("include_expired") == "true"
	h.view(c, func(txn storage.Txn) (interface{}, error) {
		return h.contract.Approval(txn, env, c.Param("id"), spender, includeExpired)
	})
}

type outputRequest struct {
	UTXOID  string `json:"utxo_id" binding:"required"`
	AssetID string `json:"asset_id" binding:"required"`
	Sender  string `json:"sender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
	Memo    string `json:"memo"`
}

func (h *Handler) WriteOutput(c *gin.Context) {
	var req outputRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		InvalidParam(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		InvalidParam(c, "invalid amount "+req.Amount)
		return
	}
	out := &mtg.Output{
		UTXOID:  req.UTXOID,
		AssetID: req.AssetID,
		Sender:  req.Sender,
		Amount:  amount,
		Memo:    req.Memo,
	}
	err = h.grp.WriteOutput(out)
	if err != nil {
		InvalidParam(c, err.Error())
		return
	}
	h.readOutput(c, req.UTXOID)
}

func (h *Handler) ReadOutput(c *gin.Context) {
	h.readOutput(c, c.Param("id"))
}

func (h *Handler) readOutput(c *gin.Context, id string) {
	out, err := h.grp.ReadOutput(id)
	if err != nil {
		Failure(c, err)
		return
	}
	if out == nil {
		NotFound(c, "output "+id+" not found")
		return
	}
	Success(c, outputView(out))
}

func (h *Handler) ReadTransaction(c *gin.Context) {
	tx, err := h.grp.ReadTransaction(c.Param("trace"))
	if err != nil {
		Failure(c, err)
		return
	}
	if tx == nil {
		NotFound(c, "transaction "+c.Param("trace")+" not found")
		return
	}
	Success(c, tx)
}

func outputView(out *mtg.Output) gin.H {
	return gin.H{
		"utxo_id":    out.UTXOID,
		"asset_id":   out.AssetID,
		"sender":     out.Sender,
		"amount":     out.Amount.String(),
		"memo":       out.Memo,
		"state":      out.StateName(),
		"trace_id":   out.TraceId,
		"created_at": out.CreatedAt,
		"updated_at": out.UpdatedAt,
	}
}

func parseLimit(c *gin.Context) (int, bool) {
	s := c.Query("limit")
	if s == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 0 {
		InvalidParam(c, "invalid limit "+s)
		return 0, false
	}
	return limit, true
}
