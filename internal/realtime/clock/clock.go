// Package clock описывает отложенные вызовы, которые тесты подменяют ручными таймерами.
package clock

import "time"

// Timer позволяет отменить отложенный вызов.
type Timer interface {
	Stop() bool
}

// AfterFunc планирует f через d.
type AfterFunc func(d time.Duration, f func()) Timer

func Std(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// OrStd возвращает afterFunc или Std, если он не задан.
func OrStd(afterFunc AfterFunc) AfterFunc {
	if afterFunc == nil {
		return Std
	}

	return afterFunc
}
