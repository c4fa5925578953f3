package certificateValidator

import (
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

type MintRequest struct {
	Holder      string `json:"holder" validate:"required,eth_addr"`
	CourseID    string `json:"web2CourseId" validate:"required,max=100"`
	MetadataURI string `json:"metadataUri" validate:"max=2048"`
}

type MinterRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
}

type TransferRequest struct {
	To string `json:"to" validate:"required,eth_addr"`
}

func Mint() fiber.Handler {
	return validators.Body[MintRequest]("validatedMint")
}

func GrantMinter() fiber.Handler {
	return validators.Body[MinterRequest]("validatedMinter")
}

func Transfer() fiber.Handler {
	return validators.Body[TransferRequest]("validatedTransfer")
}
