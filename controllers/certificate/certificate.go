package certificateController

import (
	"log"

	"yideng/ledger"
	"yideng/middleware"
	certificateValidator "yideng/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// GetCertificate returns one certificate with its metadata reference
func (h *Handler) GetCertificate(c *fiber.Ctx) error {
	tokenID, err := middleware.Uint64Param(c, "tokenId")
	if err != nil {
		return middleware.LedgerErrorResponse(c, ledger.ErrCertificateNotFound)
	}

	cert, err := h.ledger.Certificates.Certificate(c.UserContext(), tokenID)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched!", fiber.Map{
		"name":        ledger.CertificateName,
		"symbol":      ledger.CertificateSymbol,
		"certificate": cert,
		"tokenURI":    cert.MetadataURI,
	})
}

// GetHolderCertificates lists the certificates minted to a holder for one course
func (h *Handler) GetHolderCertificates(c *fiber.Ctx) error {
	holder, err := middleware.AddressParam(c, "address")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	courseID := c.Params("courseId")

	ids, err := h.ledger.Certificates.CertificatesFor(c.UserContext(), holder, courseID)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched!", fiber.Map{
		"holder":         holder,
		"web2CourseId":   courseID,
		"hasCertificate": len(ids) > 0,
		"tokenIds":       ids,
	})
}

// Mint issues a certificate directly. The caller needs the minter capability.
func (h *Handler) Mint(c *fiber.Ctx) error {
	reqData := c.Locals("validatedMint").(*certificateValidator.MintRequest)

	holder, err := ledger.ParseAddress(reqData.Holder)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	tokenID, err := h.ledger.Certificates.Mint(c.UserContext(), middleware.Caller(c), holder, reqData.CourseID, reqData.MetadataURI)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[CERTIFICATE] #%d minted to %s for %s", tokenID, holder, reqData.CourseID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate minted!", fiber.Map{
		"tokenId":      tokenID,
		"student":      holder,
		"web2CourseId": reqData.CourseID,
	})
}

func (h *Handler) GrantMinter(c *fiber.Ctx) error {
	reqData := c.Locals("validatedMinter").(*certificateValidator.MinterRequest)

	account, err := ledger.ParseAddress(reqData.Address)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	if err := h.ledger.Certificates.GrantMinter(c.UserContext(), middleware.Caller(c), account); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Minter granted!", fiber.Map{"address": account})
}

func (h *Handler) RevokeMinter(c *fiber.Ctx) error {
	account, err := middleware.AddressParam(c, "address")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	if err := h.ledger.Certificates.RevokeMinter(c.UserContext(), middleware.Caller(c), account); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Minter revoked!", fiber.Map{"address": account})
}

func (h *Handler) GetMinters(c *fiber.Ctx) error {
	minters, err := h.ledger.Caps.Members(c.UserContext(), ledger.ScopeCertificate, ledger.RoleMinter)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Minters fetched!", minters)
}

// Transfer hands a certificate the caller owns to another address
func (h *Handler) Transfer(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTransfer").(*certificateValidator.TransferRequest)

	tokenID, err := middleware.Uint64Param(c, "tokenId")
	if err != nil {
		return middleware.LedgerErrorResponse(c, ledger.ErrCertificateNotFound)
	}
	to, err := ledger.ParseAddress(reqData.To)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	if err := h.ledger.Certificates.Transfer(c.UserContext(), middleware.Caller(c), to, tokenID); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate transferred!", fiber.Map{
		"tokenId": tokenID,
		"from":    middleware.Caller(c),
		"to":      to,
	})
}
