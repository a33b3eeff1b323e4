package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/api"
	"github.com/MixinNetwork/registry/mtg"
	"github.com/MixinNetwork/registry/nft"
	"github.com/MixinNetwork/registry/storage"
	"github.com/MixinNetwork/registry/store"
	"github.com/gin-gonic/gin"
)

type closableStore interface {
	storage.Store
	Close() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bp := flag.String("d", "", "database directory path, overrides the config")
	cp := flag.String("c", "~/.mixin/registry/config.toml", "configuration file path")
	flag.Parse()

	conf, err := Setup(expandHome(*cp))
	if err != nil {
		panic(err)
	}
	if *bp != "" {
		conf.Store.Path = *bp
	}
	if conf.Logger.Level > 0 {
		logger.SetLevel(conf.Logger.Level)
	}

	db, err := openStore(ctx, &conf.Store)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	contract := nft.DefaultContract()
	err = instantiate(db, contract, &conf.Contract)
	if err != nil {
		panic(err)
	}

	group, err := mtg.BuildGroup(ctx, db, &conf.Group)
	if err != nil {
		panic(err)
	}
	group.AddWorker(NewContractWorker(group, contract))

	if conf.HTTP.Listen != "" {
		gin.SetMode(gin.ReleaseMode)
		srv := &http.Server{
			Addr:    conf.HTTP.Listen,
			Handler: api.SetupRouter(db, contract, group),
		}
		go func() {
			err := srv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				panic(err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Printf("HTTP listening on %s\n", conf.HTTP.Listen)
	}

	group.Run(ctx)
}

func openStore(ctx context.Context, conf *StoreConfig) (closableStore, error) {
	path := expandHome(conf.Path)
	switch conf.Engine {
	case StoreEnginePebble:
		return store.OpenPebble(path)
	default:
		return store.OpenBadger(ctx, path)
	}
}

// instantiate writes the contract on the first run and keeps the stored one
// afterwards, whatever the configuration says now.
func instantiate(db storage.Store, contract *nft.Contract, conf *ContractConfig) error {
	msg, err := conf.InstantiateMsg()
	if err != nil {
		return err
	}
	err = db.Transition(func(txn storage.Txn) error {
		_, err := contract.Instantiate(txn, nft.Env{}, msg)
		return err
	})
	if errors.Is(err, nft.ErrAlreadyInstantiated) {
		return nil
	}
	return err
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, _ := user.Current()
		return filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}
