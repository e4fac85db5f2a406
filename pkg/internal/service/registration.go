package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/docdrop/pkg/configs"
	ctxPkg "github.com/yeisme/docdrop/pkg/context"
	"github.com/yeisme/docdrop/pkg/internal/model"
	"github.com/yeisme/docdrop/pkg/internal/storage/db"
	"github.com/yeisme/docdrop/pkg/internal/storage/files"
	"github.com/yeisme/docdrop/pkg/internal/types"
	nlog "github.com/yeisme/docdrop/pkg/log"
	"github.com/yeisme/docdrop/pkg/metrics"
	"github.com/yeisme/docdrop/pkg/rule"
	tokenPkg "github.com/yeisme/docdrop/pkg/token"
)

// maxTokenAttempts 令牌碰撞重试上限，192 位熵下重试本身几乎不会发生.
const maxTokenAttempts = 5

// RegistrationService 负责用户登记：保存文档、落库、生成访问二维码.
type RegistrationService struct {
	dbc      *db.Client
	uploads  *files.Store
	qrcodes  *files.Store
	storeCfg *configs.StoreConfig

	// newToken 可替换，便于测试注入碰撞场景
	newToken func() (string, error)
}

// NewRegistrationService 创建并返回一个新的 RegistrationService 实例.
func NewRegistrationService(c context.Context) *RegistrationService {
	svc := &RegistrationService{
		dbc:      ctxPkg.GetDBClient(c),
		uploads:  ctxPkg.GetUploadStore(c),
		qrcodes:  ctxPkg.GetQRCodeStore(c),
		storeCfg: &configs.GetConfig().Store,
		newToken: tokenPkg.New,
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, RegistrationService features limited")
	}

	return svc
}

// Register 处理一次完整登记：校验表单、保存文档、生成唯一令牌落库、持久化二维码.
//
// 记录创建失败时清理已保存的文档文件，避免产生孤儿文件；
// 二维码写盘失败不回滚登记，访问时可按需重新生成.
func (s *RegistrationService) Register(
	ctx context.Context,
	req *types.RegisterRequest,
	file io.Reader,
	originalName string,
	declaredSize int64,
) (*types.RegisterResult, error) {
	// 先归一化再校验，纯空白的姓名过不了 required
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := rule.ValidateStruct(req); err != nil {
		metrics.RegistrationCounter.WithLabelValues("validation_failed").Inc()

		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	if s.dbc == nil || s.dbc.GetDB() == nil {
		return nil, fmt.Errorf("%w: db not initialized", ErrStorage)
	}

	storedName, err := s.uploads.Save(file, originalName, declaredSize)
	if err != nil {
		metrics.RegistrationCounter.WithLabelValues("upload_rejected").Inc()

		return nil, err
	}

	user, err := s.createWithToken(ctx, req, storedName)
	if err != nil {
		// 孤儿清理：记录没落库，文件不保留
		if rmErr := s.uploads.Remove(storedName); rmErr != nil {
			nlog.Logger().Warn().Err(rmErr).Str("file", storedName).Msg("failed to clean up orphaned file")
		}

		metrics.RegistrationCounter.WithLabelValues("db_failed").Inc()

		return nil, err
	}

	accessURL := AccessURL(s.storeCfg.ExternalBase, user.Token)

	qrName := user.Token + ".png"
	if err := s.writeQRCode(user.Token, accessURL); err != nil {
		nlog.Logger().Warn().Err(err).Str("token", user.Token).Msg("failed to persist qr code")
	}

	metrics.RegistrationCounter.WithLabelValues("success").Inc()
	metrics.UploadBytes.Observe(float64(declaredSize))

	nlog.Logger().Info().
		Uint("id", user.ID).
		Str("file", user.FilePath).
		Msg("user registered")

	return &types.RegisterResult{
		ID:        user.ID,
		Name:      user.Name,
		Token:     user.Token,
		AccessURL: accessURL,
		QRPath:    "/qrcodes/" + qrName,
	}, nil
}

// createWithToken 生成令牌并插入记录，唯一索引冲突时换新令牌重试.
func (s *RegistrationService) createWithToken(
	ctx context.Context,
	req *types.RegisterRequest,
	storedName string,
) (*model.User, error) {
	for attempt := range maxTokenAttempts {
		tok, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStorage, err.Error())
		}

		user := &model.User{
			Name:     req.Name,
			Email:    req.Email,
			FilePath: storedName,
			Token:    tok,
		}

		err = s.dbc.GetDB().WithContext(ctx).Create(user).Error
		if err == nil {
			return user, nil
		}

		if !isDuplicateErr(err) {
			return nil, fmt.Errorf("%w: %s", ErrStorage, err.Error())
		}

		nlog.Logger().Warn().Int("attempt", attempt+1).Msg("token collision, retrying")
	}

	return nil, fmt.Errorf("%w: token collision persisted after %d attempts", ErrStorage, maxTokenAttempts)
}

// writeQRCode 生成并持久化访问链接二维码.
func (s *RegistrationService) writeQRCode(token, accessURL string) error {
	png, err := tokenPkg.EncodeQR(accessURL, s.storeCfg.QRCodeSize)
	if err != nil {
		return err
	}

	return s.qrcodes.WriteBytes(token+".png", png)
}

// AccessURL 拼接文档访问链接，二维码编码的即是该链接.
func AccessURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/d/" + token
}

// isDuplicateErr 判断是否唯一约束冲突，跨 SQLite/MySQL/PostgreSQL.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
