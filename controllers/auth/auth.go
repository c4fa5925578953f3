package authController

import (
	"errors"
	"log"
	"time"

	"yideng/config"
	"yideng/database"
	"yideng/ledger"
	"yideng/middleware"
	"yideng/models"
	"yideng/validators"
	authValidator "yideng/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 3
	blockDuration   = time.Minute
	failureWindow   = 15 * time.Minute
)

// Register creates an account bound to a ledger address
func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	address, err := ledger.ParseAddress(reqData.Address)
	if err != nil || address.IsZero() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid address!", nil)
	}

	db := database.Database.Db

	// Check if address already exists
	if err := db.Where("address = ?", address.String()).First(&models.Account{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Address is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	account := models.Account{
		Address:  address.String(),
		Name:     reqData.Name,
		Password: string(hashedPassword),
	}
	if err := db.Create(&account).Error; err != nil {
		log.Printf("Error saving account to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register account!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Account registered successfully.", account)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	address, err := ledger.ParseAddress(reqData.Address)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	db := database.Database.Db

	var account models.Account
	err = db.Where("address = ? AND is_deleted = ?", address.String(), false).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}
	if err != nil {
		log.Printf("Error loading account %s: %v", address, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	now := time.Now()
	if account.IsBlocked && account.BlockedUntil != nil && account.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if account.LastFailedLogin != nil && now.Sub(*account.LastFailedLogin) > failureWindow {
		account.FailedLoginAttempts = 0
		account.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(reqData.Password)); err != nil {
		account.FailedLoginAttempts++
		account.LastFailedLogin = &now

		if account.FailedLoginAttempts >= maxFailedLogins {
			unblock := now.Add(blockDuration)
			account.IsBlocked = true
			account.BlockedUntil = &unblock
		}
		if err := db.Save(&account).Error; err != nil {
			log.Printf("Error recording failed login: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Wrong Password", nil)
	}

	account.LastLogin = &now
	account.FailedLoginAttempts = 0
	account.LastFailedLogin = nil
	account.IsBlocked = false
	account.BlockedUntil = nil
	if err := db.Save(&account).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	tracking := models.LoginTracking{
		AccountID: account.ID,
		Address:   account.Address,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	if err := db.Create(&tracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}
	log.Printf("Account %s logged in from IP: %s", account.Address, ip)

	token, err := middleware.GenerateJWT(account.ID, address, account.Name)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"account": account,
		"token":   token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	page := c.Locals("validatedPagination").(*validators.Pagination)

	db := database.Database.Db.Model(&models.LoginTracking{}).Where("account_id = ?", accountID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	var history []models.LoginTracking
	if err := db.Order("id desc").Offset(page.Offset()).Limit(page.Limit).Find(&history).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}
