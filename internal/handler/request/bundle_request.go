package request

import "encoding/json"

// CreateBundleRequest 创建 lock bundle
type CreateBundleRequest struct {
	Offer            json.RawMessage `json:"offer" binding:"required"`
	DestinationChain string          `json:"destination_chain" binding:"required,chain_id"`
	Contract         string          `json:"contract" binding:"required,evm_address"`
	Receiver         string          `json:"receiver" binding:"required,evm_address"`
	Submit           bool            `json:"submit"`
}

// BundleURI 路径参数
type BundleURI struct {
	Nonce string `uri:"nonce" binding:"required,len=66,startswith=0x"`
}
