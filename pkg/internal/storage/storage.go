// Package storage 处理存储操作，聚合数据库、上传文件、二维码图片与 KV 缓存.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	dbClient := mgr.GetDBClient()
//	uploads := mgr.GetUploadStore()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/docdrop/pkg/cache"
	"github.com/yeisme/docdrop/pkg/configs"
	dbc "github.com/yeisme/docdrop/pkg/internal/storage/db"
	"github.com/yeisme/docdrop/pkg/internal/storage/files"
	kvc "github.com/yeisme/docdrop/pkg/internal/storage/kv"
	nlog "github.com/yeisme/docdrop/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB      *dbc.Client
	Uploads *files.Store
	QRCodes *files.Store
	KV      kvc.KVStore
	Cache   *cache.Cache
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// New 按给定配置创建独立的存储管理器，不触碰全局单例.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	dbi, err := dbc.New(ctx, &cfg.DB)
	if err != nil {
		return nil, err
	}

	m.DB = dbi

	uploads, err := files.NewUploadStore(&cfg.Store)
	if err != nil {
		return nil, err
	}

	m.Uploads = uploads

	qrcodes, err := files.NewQRCodeStore(&cfg.Store)
	if err != nil {
		return nil, err
	}

	m.QRCodes = qrcodes

	m.KV = kvc.NewMemoryKV()
	m.Cache = cache.NewCache(m.KV)

	return m, nil
}

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		var m *Manager

		m, err = New(ctx, configs.GetConfig())
		if err != nil {
			return
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetUploadStore 获取上传文件存储.
func (m *Manager) GetUploadStore() *files.Store {
	return m.Uploads
}

// GetQRCodeStore 获取二维码图片存储.
func (m *Manager) GetQRCodeStore() *files.Store {
	return m.QRCodes
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() kvc.KVStore {
	return m.KV
}

// GetCache 获取序列化缓存.
func (m *Manager) GetCache() *cache.Cache {
	return m.Cache
}

// Close 释放所有存储资源.
func (m *Manager) Close() error {
	var firstErr error

	if m.DB != nil {
		if err := m.DB.Close(); err != nil {
			firstErr = err
		}
	}

	if m.KV != nil {
		if err := m.KV.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
