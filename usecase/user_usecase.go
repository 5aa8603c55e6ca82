package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"dev-pulse/domain/dto"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/configuration"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepository repository.IUser
}

func NewUserUsecase(userRepository repository.IUser) IUserUsecase {
	return &userUsecase{userRepository: userRepository}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res
	res.ResponseCode = "401"
	res.ResponseMessage = "Unauthorized"

	user, err := u.userRepository.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while getting user")
		return res
	}
	if user.Password != req.Password {
		return res
	}

	payload := map[string]interface{}{
		"iss":       strconv.FormatInt(user.ID, 10),
		"user_name": user.UserName,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := utils.GenerateToken(payload, configuration.C.App.SecretKey)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "Internal Server Error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "OK"
	res.Data = map[string]interface{}{
		"token": token,
		"user":  user,
	}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res
	res.ResponseCode = "500"
	res.ResponseMessage = "Internal Server Error"

	if _, err := u.userRepository.GetByUserName(ctx, req.UserName); err == nil {
		res.ResponseCode = "409"
		res.ResponseMessage = fmt.Sprintf("User %s already exists", req.UserName)
		return res
	}

	user := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: req.Password,
	}
	if err := u.userRepository.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating user")
		return res
	}

	res.ResponseCode = "201"
	res.ResponseMessage = "Created"
	return res
}
