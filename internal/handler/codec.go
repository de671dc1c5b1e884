package handler

import (
	"time"

	"github.com/go-faster/jx"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/money"
)

// Hand-rolled jx codecs for the checkout wire model. The field names follow
// the collaborator wire contracts exactly; unknown fields are skipped on
// decode so clients can send supersets.

func decodePlaceOrderRequest(data []byte) (checkout.PlaceOrderRequest, error) {
	var req checkout.PlaceOrderRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "userId":
			req.UserID, err = d.Str()
		case "userCurrency":
			req.UserCurrency, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		case "address":
			return decodeAddress(d, &req.Address)
		case "creditCard":
			return decodeCreditCard(d, &req.CreditCard)
		default:
			return d.Skip()
		}
		return err
	})
	return req, err
}

func decodeAddress(d *jx.Decoder, addr *checkout.Address) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "streetAddress":
			addr.StreetAddress, err = d.Str()
		case "city":
			addr.City, err = d.Str()
		case "state":
			addr.State, err = d.Str()
		case "country":
			addr.Country, err = d.Str()
		case "zipCode":
			addr.ZipCode, err = d.Int32()
		default:
			return d.Skip()
		}
		return err
	})
}

func decodeCreditCard(d *jx.Decoder, card *checkout.CreditCardInfo) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "creditCardNumber":
			card.Number, err = d.Str()
		case "creditCardCvv":
			card.CVV, err = d.Int32()
		case "creditCardExpirationYear":
			card.ExpirationYear, err = d.Int32()
		case "creditCardExpirationMonth":
			card.ExpirationMonth, err = d.Int32()
		default:
			return d.Skip()
		}
		return err
	})
}

func encodePlaceOrderResponse(order *checkout.OrderResult) []byte {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("order")
	encodeOrder(e, order)
	e.ObjEnd()
	return e.Bytes()
}

func encodeOrderHistoryResponse(orders []checkout.OrderResult) []byte {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("orders")
	e.ArrStart()
	for i := range orders {
		encodeOrder(e, &orders[i])
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

func encodeOrder(e *jx.Encoder, o *checkout.OrderResult) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.OrderID)
	e.FieldStart("shippingTrackingId")
	e.Str(o.ShippingTrackingID)
	e.FieldStart("shippingCost")
	encodeMoney(e, o.ShippingCost)
	e.FieldStart("shippingAddress")
	encodeAddress(e, o.ShippingAddress)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("item")
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.Item.ProductID)
		e.FieldStart("quantity")
		e.Int32(it.Item.Quantity)
		e.ObjEnd()
		e.FieldStart("cost")
		encodeMoney(e, it.Cost)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("userId")
	e.Str(o.UserID)
	e.FieldStart("email")
	e.Str(o.Email)
	e.FieldStart("totalCost")
	encodeMoney(e, o.TotalCost)
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339Nano))
	e.FieldStart("userCurrency")
	e.Str(o.UserCurrency)
	e.ObjEnd()
}

func encodeAddress(e *jx.Encoder, addr checkout.Address) {
	e.ObjStart()
	e.FieldStart("streetAddress")
	e.Str(addr.StreetAddress)
	e.FieldStart("city")
	e.Str(addr.City)
	e.FieldStart("state")
	e.Str(addr.State)
	e.FieldStart("country")
	e.Str(addr.Country)
	e.FieldStart("zipCode")
	e.Int32(addr.ZipCode)
	e.ObjEnd()
}

func encodeMoney(e *jx.Encoder, m money.Money) {
	e.ObjStart()
	e.FieldStart("currencyCode")
	e.Str(m.CurrencyCode)
	e.FieldStart("units")
	e.Int64(m.Units)
	e.FieldStart("nanos")
	e.Int32(m.Nanos)
	e.ObjEnd()
}

func encodeError(code int, message string) []byte {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	return e.Bytes()
}
