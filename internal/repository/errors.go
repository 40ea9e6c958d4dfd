package repository

import "errors"

var ErrNotFound = errors.New("запись не найдена")
var ErrDuplicateTitle = errors.New("задача с таким названием уже существует")
var ErrDuplicateUsername = errors.New("пользователь с таким именем уже существует")
