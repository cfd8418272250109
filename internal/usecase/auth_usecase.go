package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/session"
	"go-medical-booking/pkg/jwt"
	"go-medical-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrAccountNotFound    = errors.New("no account found with this email")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")

	ErrInvalidEmail   = invalidField("email", "Please enter a valid email address")
	ErrInvalidLicense = invalidField("license", "License must look like LIC-123456")
	ErrSpecialty      = invalidField("specialty", "Please enter a specialty")
)

const minPasswordLength = 6

// Defaults given to a doctor at registration until they edit their profile.
const (
	defaultDoctorExperience = 5
	defaultDoctorAboutFmt   = "Experienced %s with excellent patient care."
)

// AuthErrorMessage maps an auth failure to the text shown to the user. Unknown errors
// get a generic message.
func AuthErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		return "This email is already registered"
	case errors.Is(err, ErrWeakPassword):
		return "Password should be at least 6 characters"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrAccountNotFound):
		return "No account found with this email"
	case errors.Is(err, ErrNotADoctor):
		return "This account is not registered as a doctor."
	case errors.Is(err, ErrInvalidToken):
		return "Invalid or expired token"
	case errors.Is(err, ErrTokenRevoked):
		return "Token has been revoked"
	default:
		return "Something went wrong. Please try again."
	}
}

type AuthUsecase interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.UserResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error)
	SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	DoctorSignIn(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	SignOut(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	CurrentSession(ctx context.Context) *dto.SessionResponse
}

type authUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	accountRepo    repository.AccountRepository
	profileRepo    repository.ProfileRepository
	doctorRepo     repository.DoctorRepository
	jwtService     *jwt.JWTService
	sessionManager *session.Manager
	redisClient    *redis.Client
	auditService   service.AuditService
	notifier       *realtime.Notifier
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	doctorRepo repository.DoctorRepository,
	jwtService *jwt.JWTService,
	sessionManager *session.Manager,
	redisClient *redis.Client,
	auditService service.AuditService,
	notifier *realtime.Notifier,
) AuthUsecase {
	return &authUsecase{
		db:             db,
		log:            log,
		accountRepo:    accountRepo,
		profileRepo:    profileRepo,
		doctorRepo:     doctorRepo,
		jwtService:     jwtService,
		sessionManager: sessionManager,
		redisClient:    redisClient,
		auditService:   auditService,
		notifier:       notifier,
	}
}

// SignUp creates a patient account and its profile in one transaction.
func (u *authUsecase) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)
	phone := normalizePhone(req.Phone)

	if !validator.IsValidName(req.Name) {
		return nil, ErrInvalidName
	}
	if !validator.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validator.IsValidPhone(phone) {
		return nil, ErrInvalidPhone
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	account, err := u.createAccount(ctx, tx, email, req.Password)
	if err != nil {
		return nil, err
	}

	profile := &entity.UserProfile{
		ID:    account.ID,
		Name:  strings.TrimSpace(req.Name),
		Phone: phone,
		Email: email,
	}
	if err := u.profileRepo.Create(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to create user profile: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	_ = u.auditService.LogCreate(ctx, &account.ID, entity.AuditActionUserSignUp, "user", account.ID.String(), converter.ProfileToResponse(profile))

	return &dto.UserResponse{
		ID:               account.ID,
		Email:            account.Email,
		Name:             profile.Name,
		Role:             string(entity.RolePatient),
		PasswordStrength: string(validator.GetPasswordStrength(req.Password)),
		CreatedAt:        account.CreatedAt,
	}, nil
}

// RegisterDoctor creates an account and a bookable doctor record sharing its id.
func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)
	specialty := strings.TrimSpace(req.Specialty)

	if !validator.IsValidName(req.Name) {
		return nil, ErrInvalidName
	}
	if !validator.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if specialty == "" {
		return nil, ErrSpecialty
	}
	if !validator.IsValidLicense(req.License) {
		return nil, ErrInvalidLicense
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	account, err := u.createAccount(ctx, tx, email, req.Password)
	if err != nil {
		return nil, err
	}

	doctor := &entity.Doctor{
		ID:         account.ID,
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Specialty:  specialty,
		License:    strings.ToUpper(req.License),
		Rating:     0,
		Reviews:    0,
		About:      fmt.Sprintf(defaultDoctorAboutFmt, specialty),
		Experience: defaultDoctorExperience,
		Fees:       entity.DefaultConsultationFee,
	}
	if err := u.doctorRepo.Create(ctx, tx, doctor); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.notifier.DoctorsChanged(ctx)
	_ = u.auditService.LogCreate(ctx, &account.ID, entity.AuditActionDoctorRegister, "doctor", doctor.ID.String(), converter.DoctorToResponse(doctor))

	return &dto.UserResponse{
		ID:               account.ID,
		Email:            account.Email,
		Name:             doctor.Name,
		Role:             string(entity.RoleDoctor),
		PasswordStrength: string(validator.GetPasswordStrength(req.Password)),
		CreatedAt:        account.CreatedAt,
	}, nil
}

func (u *authUsecase) createAccount(ctx context.Context, tx *gorm.DB, email, password string) (*entity.Account, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	account := &entity.Account{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashedPassword),
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := u.accountRepo.Create(ctx, tx, account); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create account: %+v", err)
		return nil, err
	}

	return account, nil
}

func (u *authUsecase) SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	tokens, _, err := u.signIn(ctx, req)
	return tokens, err
}

// DoctorSignIn only lets doctor sessions through. Anyone else is signed straight back out.
func (u *authUsecase) DoctorSignIn(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	tokens, issued, err := u.signIn(ctx, req)
	if err != nil {
		return nil, err
	}

	if !tokens.Session.IsDoctor {
		if err := u.endSession(ctx, issued.identity, issued.accessTokenID, issued.refreshTokenID); err != nil {
			return nil, err
		}
		return nil, ErrNotADoctor
	}

	return tokens, nil
}

type issuedTokens struct {
	identity       entity.Identity
	accessTokenID  string
	refreshTokenID string
}

func (u *authUsecase) signIn(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *issuedTokens, error) {
	// Find account by email (read-only, no transaction needed)
	account, err := u.accountRepo.FindByEmail(ctx, u.db, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find account by email: %+v", err)
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, ErrAccountNotFound
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	identity := entity.Identity{ID: account.ID, Email: account.Email}
	tokens, issued, err := u.issueTokens(ctx, identity, session.SignedIn)
	if err != nil {
		return nil, nil, err
	}

	_ = u.auditService.LogCreate(ctx, &account.ID, entity.AuditActionUserLogin, "session", issued.accessTokenID, tokens.Session)

	return tokens, issued, nil
}

// issueTokens mints a token pair and reports the auth-state change, which derives the
// session role exactly once.
func (u *authUsecase) issueTokens(ctx context.Context, identity entity.Identity, kind session.ChangeKind) (*dto.TokenResponse, *issuedTokens, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(identity.ID, identity.Email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(identity.ID, identity.Email)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, nil, err
	}

	if err := u.redisClient.Set(ctx, refreshTokenKey(identity.ID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, nil, err
	}

	sess, err := u.sessionManager.OnAuthStateChanged(ctx, session.Change{
		Kind:     kind,
		Identity: identity,
		TokenID:  accessTokenID,
		TTL:      u.jwtService.GetAccessExpiry(),
	})
	if err != nil {
		return nil, nil, err
	}

	resp := &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		Session:      converter.SessionToResponse(sess),
	}
	issued := &issuedTokens{
		identity:       identity,
		accessTokenID:  accessTokenID,
		refreshTokenID: refreshTokenID,
	}

	return resp, issued, nil
}

// SignOut ends the session of the current access token and, when given, revokes the
// refresh token issued with it.
func (u *authUsecase) SignOut(ctx context.Context, refreshToken string) error {
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	refreshTokenID := ""
	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == sess.UserID {
			refreshTokenID = claims.TokenID
		}
	}

	identity := entity.Identity{ID: sess.UserID, Email: sess.Email}
	if err := u.endSession(ctx, identity, sess.TokenID, refreshTokenID); err != nil {
		return err
	}

	_ = u.auditService.LogCreate(ctx, &sess.UserID, entity.AuditActionUserLogout, "session", sess.TokenID, nil)

	return nil
}

func (u *authUsecase) endSession(ctx context.Context, identity entity.Identity, accessTokenID, refreshTokenID string) error {
	if _, err := u.sessionManager.OnAuthStateChanged(ctx, session.Change{
		Kind:     session.SignedOut,
		Identity: identity,
		TokenID:  accessTokenID,
	}); err != nil {
		return err
	}

	if refreshTokenID != "" {
		if err := u.redisClient.Del(ctx, refreshTokenKey(identity.ID, refreshTokenID)).Err(); err != nil {
			u.log.Warnf("Failed to delete refresh token: %+v", err)
			return err
		}
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Check if refresh token exists in Redis
	refreshKey := refreshTokenKey(claims.UserID, claims.TokenID)
	deleted, err := u.redisClient.Del(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	tokens, _, err := u.issueTokens(ctx, entity.Identity{ID: claims.UserID, Email: claims.Email}, session.Refreshed)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// CurrentSession reports the session of the request, or the signed-out state.
func (u *authUsecase) CurrentSession(ctx context.Context) *dto.SessionResponse {
	sess, _ := middleware.GetSessionFromContext(ctx)
	return converter.SessionToResponse(sess)
}

func refreshTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID.String(), tokenID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
