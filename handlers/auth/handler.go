package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ivanmitkovski/chisto-mk/db"
	"github.com/ivanmitkovski/chisto-mk/models"
	"github.com/ivanmitkovski/chisto-mk/utils"
)

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// @Summary Register a citizen account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.UserRegister true "User information"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /register [post]
func Register(c *gin.Context) {
	var dto models.UserRegister
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	var existing models.User
	if err := db.DB.Where("email = ?", dto.Email).First(&existing).Error; err == nil {
		utils.SendError(c, http.StatusConflict, utils.CodeConflict, "This email is already used")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error when checking the email existence")
		return
	}

	passwordHash, err := hashPassword(dto.Password)
	if err != nil {
		utils.LogError(err, "Error hashing password in Register")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error hashing password")
		return
	}

	user := models.User{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PhoneNumber:  dto.PhoneNumber,
		PasswordHash: passwordHash,
		Role:         models.UserRole,
		Status:       models.UserActive,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		utils.LogError(err, "Error creating user in Register")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error creating user: "+err.Error())
		return
	}

	utils.LogSuccessWithUser(user.ID, "User registered")
	c.JSON(http.StatusCreated, user)
}

// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.UserLogin true "Credentials"
// @Success 200 {object} map[string]interface{} "token and user"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /login [post]
func Login(c *gin.Context) {
	var dto models.UserLogin
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", dto.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid email or password")
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving user: "+err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user, 24)
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Error generating token in Login")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error generating token")
		return
	}

	utils.LogSuccessWithUser(user.ID, "User logged in")
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
