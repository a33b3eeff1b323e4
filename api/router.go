package api

import (
	"github.com/MixinNetwork/registry/mtg"
	"github.com/MixinNetwork/registry/nft"
	"github.com/MixinNetwork/registry/storage"
	"github.com/gin-gonic/gin"
)

func SetupRouter(store storage.Store, contract *nft.Contract, grp *mtg.Group) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TimingMiddleware())

	h := &Handler{store: store, contract: contract, grp: grp}

	v1 := r.Group("/api/v1")
	{
		info := v1.Group("/contract")
		{
			info.GET("", h.ContractDetails)
			info.GET("/version", h.Version)
			info.GET("/minter", h.Minter)
			info.GET("/num_tokens", h.NumTokens)
		}

		tokens := v1.Group("/tokens")
		{
			tokens.GET("", h.AllTokens)
			tokens.GET("/:id/approvals/:spender", h.Approval)
			tokens.GET("/:id/approvals", h.Approvals)
			tokens.GET("/:id", h.Token)
		}

		v1.GET("/owners/:owner/tokens", h.Tokens)

		outputs := v1.Group("/outputs")
		{
			outputs.POST("", h.WriteOutput)
			outputs.GET("/:id", h.ReadOutput)
		}

		v1.GET("/transactions/:trace", h.ReadTransaction)
	}
	return r
}
