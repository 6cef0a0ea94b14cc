package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linemk/jpashop-orders/internal/domain/models"
	"github.com/linemk/jpashop-orders/internal/service"
)

// SearchQuery - необязательные условия поиска заказов из строки запроса
type SearchQuery struct {
	Status     string `query:"status" validate:"omitempty,oneof=ORDERED CANCELED"`
	MemberName string `query:"memberName" validate:"max=100"`
}

// PageQuery - окно выборки из строки запроса
type PageQuery struct {
	Offset int `query:"offset" validate:"gte=0"`
	Limit  int `query:"limit" validate:"gte=1,lte=1000"`
}

var validate = newValidator()

// ошибки валидатора называют поле так же, как параметр запроса
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func parseSearch(values url.Values) (models.OrderSearch, error) {
	q := SearchQuery{
		Status:     values.Get("status"),
		MemberName: values.Get("memberName"),
	}
	if err := validateQuery(q); err != nil {
		return models.OrderSearch{}, err
	}
	return models.OrderSearch{
		Status:     models.OrderStatus(q.Status),
		MemberName: q.MemberName,
	}, nil
}

func parsePage(values url.Values) (models.Page, error) {
	q := PageQuery{Offset: 0, Limit: models.DefaultPageLimit}

	var err error
	if raw := values.Get("offset"); raw != "" {
		if q.Offset, err = strconv.Atoi(raw); err != nil {
			return models.Page{}, &service.InvalidArgumentError{Field: "offset", Reason: "must be an integer"}
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil {
			return models.Page{}, &service.InvalidArgumentError{Field: "limit", Reason: "must be an integer"}
		}
	}
	if err := validateQuery(q); err != nil {
		return models.Page{}, err
	}
	return models.Page{Offset: q.Offset, Limit: q.Limit}, nil
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.InvalidArgumentError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// rejectPaging отклоняет offset/limit там, где выборка не разбивается на страницы
func rejectPaging(values url.Values) error {
	for _, name := range []string{"offset", "limit"} {
		if values.Has(name) {
			return &service.InvalidArgumentError{Field: name, Reason: "pagination is not supported by this endpoint"}
		}
	}
	return nil
}

func validateQuery(q any) error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &service.InvalidArgumentError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}
