package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/docdrop/pkg/cache"
	"github.com/yeisme/docdrop/pkg/configs"
	ctxPkg "github.com/yeisme/docdrop/pkg/context"
	"github.com/yeisme/docdrop/pkg/internal/model"
	"github.com/yeisme/docdrop/pkg/internal/storage/db"
	"github.com/yeisme/docdrop/pkg/internal/storage/files"
	"github.com/yeisme/docdrop/pkg/internal/types"
	nlog "github.com/yeisme/docdrop/pkg/log"
	tokenPkg "github.com/yeisme/docdrop/pkg/token"
)

// documentCacheTTL 令牌到文档信息的缓存时长；记录不可变，缓存只为省查询.
const documentCacheTTL = 5 * time.Minute

// DocumentService 负责按令牌访问文档与首页用户列表.
type DocumentService struct {
	dbc      *db.Client
	cachec   *cache.Cache
	qrcodes  *files.Store
	storeCfg *configs.StoreConfig
}

// NewDocumentService 创建并返回一个新的 DocumentService 实例.
func NewDocumentService(c context.Context) *DocumentService {
	svc := &DocumentService{
		dbc:      ctxPkg.GetDBClient(c),
		cachec:   ctxPkg.GetCache(c),
		qrcodes:  ctxPkg.GetQRCodeStore(c),
		storeCfg: &configs.GetConfig().Store,
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, DocumentService features limited")
	}

	return svc
}

// FindByToken 按访问令牌查找文档记录，未命中缓存时回源数据库.
func (s *DocumentService) FindByToken(ctx context.Context, token string) (*types.DocumentInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrNotFound)
	}

	if s.dbc == nil || s.dbc.GetDB() == nil {
		return nil, fmt.Errorf("%w: db not initialized", ErrStorage)
	}

	getter := func() (types.DocumentInfo, error) {
		var user model.User

		err := s.dbc.GetDB().WithContext(ctx).Where("token = ?", token).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.DocumentInfo{}, fmt.Errorf("%w: token", ErrNotFound)
			}

			return types.DocumentInfo{}, fmt.Errorf("%w: %s", ErrStorage, err.Error())
		}

		return types.DocumentInfo{
			Name:      user.Name,
			FilePath:  user.FilePath,
			Token:     user.Token,
			CreatedAt: user.CreatedAt,
		}, nil
	}

	if s.cachec == nil {
		info, err := getter()
		if err != nil {
			return nil, err
		}

		return &info, nil
	}

	info, err := cache.GetOrSet(ctx, s.cachec, "doc:"+token, getter, documentCacheTTL)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// EnsureQRCode 确保令牌对应的二维码图片存在，缺失时重新生成，返回图片文件名.
func (s *DocumentService) EnsureQRCode(ctx context.Context, token string) (string, error) {
	info, err := s.FindByToken(ctx, token)
	if err != nil {
		return "", err
	}

	qrName := info.Token + ".png"
	if _, err := s.qrcodes.Resolve(qrName); err == nil {
		return qrName, nil
	}

	png, err := tokenPkg.EncodeQR(AccessURL(s.storeCfg.ExternalBase, info.Token), s.storeCfg.QRCodeSize)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrStorage, err.Error())
	}

	if err := s.qrcodes.WriteBytes(qrName, png); err != nil {
		return "", fmt.Errorf("%w: %s", ErrStorage, err.Error())
	}

	return qrName, nil
}

// ListUsers 返回全部登记用户，新记录在前.
func (s *DocumentService) ListUsers(ctx context.Context) ([]types.UserListItem, error) {
	if s.dbc == nil || s.dbc.GetDB() == nil {
		return nil, fmt.Errorf("%w: db not initialized", ErrStorage)
	}

	var users []model.User
	if err := s.dbc.GetDB().WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorage, err.Error())
	}

	items := make([]types.UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, types.UserListItem{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			AccessURL: AccessURL(s.storeCfg.ExternalBase, u.Token),
			CreatedAt: u.CreatedAt,
		})
	}

	return items, nil
}
