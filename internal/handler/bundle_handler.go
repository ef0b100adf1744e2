package handler

import (
	"context"
	"errors"

	"bridge-core/internal/handler/request"
	"bridge-core/internal/handler/response"
	"bridge-core/internal/model"
	"bridge-core/internal/service"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// BundleService is what the handler needs from service.BridgeService.
type BundleService interface {
	Lock(ctx context.Context, in service.LockInput) (*service.LockOutput, error)
	Get(ctx context.Context, nonce string) (*model.BundleRecord, error)
}

type BundleHandler struct {
	svc BundleService
}

func NewBundleHandler(svc BundleService) *BundleHandler {
	return &BundleHandler{svc: svc}
}

// CreateBundle 构建 lock bundle
// @Summary 构建 lock bundle
// @Description 根据 offer 构建锁定交易, submit=true 时直接广播
// @Tags Bridge
// @Accept json
// @Produce json
// @Param request body request.CreateBundleRequest true "Lock Request"
// @Success 200 {object} response.Response
// @Router /api/v1/bundles [post]
func (h *BundleHandler) CreateBundle(c *gin.Context) {
	// 1. 绑定参数
	var req request.CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	// 2. 调用 Service
	out, err := h.svc.Lock(c.Request.Context(), service.LockInput{
		Offer:               req.Offer,
		DestinationChain:    req.DestinationChain,
		DestinationContract: common.HexToAddress(req.Contract),
		Receiver:            common.HexToAddress(req.Receiver),
		Submit:              req.Submit,
	})
	if err != nil {
		// 提交失败时仍然返回 bundle, 调用方可以自行重新广播
		if errors.Is(err, errno.ErrSubmission) && out != nil {
			response.ErrorWithData(c, err, out.Record)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, out.Record)
}

// GetBundle 查询 bundle
// @Summary 查询 bundle
// @Tags Bridge
// @Produce json
// @Param nonce path string true "message nonce"
// @Success 200 {object} response.Response
// @Router /api/v1/bundles/{nonce} [get]
func (h *BundleHandler) GetBundle(c *gin.Context) {
	var uri request.BundleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), uri.Nonce)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}
