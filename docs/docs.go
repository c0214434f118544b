// Package docs holds the swagger documents of the storefront services, one
// instance per service.
package docs

import "github.com/swaggo/swag"

const (
	CatalogInstance = "catalog"
	CartInstance    = "cart"
	OrderInstance   = "order"
)

const errorDefinitions = `
        "api.FailedResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"$ref": "#/definitions/api.ResponseError"}
            }
        },
        "api.ResponseError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        }`

const docTemplateCatalog = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/products/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "get product",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "product", "schema": {"$ref": "#/definitions/model.Product"}},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/products/{id}/stock/decrement": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["catalog"],
                "summary": "decrement stock once per reference",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.DecrementStockRequest"}}
                ],
                "responses": {
                    "200": {"description": "stock level", "schema": {"$ref": "#/definitions/model.StockLevel"}},
                    "401": {"description": "UnauthenticatedCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}},
                    "409": {"description": "ConflictCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/products/{id}/stock/restock": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["catalog"],
                "summary": "undo the decrement of a reference",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RestockRequest"}}
                ],
                "responses": {
                    "200": {"description": "stock level", "schema": {"$ref": "#/definitions/model.StockLevel"}},
                    "401": {"description": "UnauthenticatedCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_name": {"type": "string"},
                "current_price": {"type": "number"},
                "in_stock": {"type": "integer"}
            }
        },
        "model.StockLevel": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer"},
                "in_stock": {"type": "integer"},
                "replayed": {"type": "boolean"}
            }
        },
        "dto.DecrementStockRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer"},
                "reference": {"type": "string"}
            }
        },
        "dto.RestockRequest": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"}
            }
        },` + errorDefinitions + `
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

const docTemplateCart = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/cart/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["cart"],
                "summary": "get the cart of a customer",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "cart lines", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CartLineDTO"}}},
                    "403": {"description": "UnauthorizedCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/cart/add-to-cart/{productId}/{customerId}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["cart"],
                "summary": "add one unit of a product",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "productId", "in": "path", "required": true},
                    {"type": "integer", "name": "customerId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "added", "schema": {"$ref": "#/definitions/response.MessageBody"}},
                    "400": {"description": "BadRequestCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/cart/{id}/increment": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["cart"],
                "summary": "increment a cart line of the caller",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CartLineChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "totals", "schema": {"$ref": "#/definitions/dto.CartTotalsResponse"}},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/cart/{id}/decrement": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["cart"],
                "summary": "decrement a cart line of the caller, removing it at zero",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CartLineChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "totals", "schema": {"$ref": "#/definitions/dto.CartTotalsResponse"}},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/cart/{id}/clear": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["cart"],
                "summary": "remove the consumed lines of a customer",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ClearCartRequest"}}
                ],
                "responses": {
                    "200": {"description": "deleted count", "schema": {"$ref": "#/definitions/dto.ClearCartResponse"}},
                    "401": {"description": "UnauthenticatedCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        }
    },
    "definitions": {
        "response.MessageBody": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "dto.CartLineDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_link": {"type": "integer"},
                "customer_link": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "dto.CartLineChangeRequest": {
            "type": "object",
            "properties": {"user_id": {"type": "integer"}}
        },
        "dto.CartTotalsResponse": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer"},
                "amount": {"type": "number"},
                "total": {"type": "number"}
            }
        },
        "dto.ClearCartRequest": {
            "type": "object",
            "properties": {"product_ids": {"type": "array", "items": {"type": "integer"}}}
        },
        "dto.ClearCartResponse": {
            "type": "object",
            "properties": {"deleted": {"type": "integer"}}
        },` + errorDefinitions + `
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

const docTemplateOrder = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/place-order/{customerId}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["order"],
                "summary": "place one order per cart line under a single payment id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "customerId", "in": "path", "required": true},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PlaceOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "placed", "schema": {"$ref": "#/definitions/dto.PlaceOrderResponse"}},
                    "400": {"description": "BadRequestCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}},
                    "409": {"description": "ConflictCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}},
                    "429": {"description": "TooManyRequestsCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}},
                    "500": {"description": "orders exist but the checkout did not finish", "schema": {"$ref": "#/definitions/dto.CheckoutFailureResponse"}},
                    "502": {"description": "rolled back", "schema": {"$ref": "#/definitions/dto.CheckoutFailureResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["order"],
                "summary": "list every order",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "orders", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.OrderDTO"}}},
                    "403": {"description": "UnauthorizedCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/orders/{customerId}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["order"],
                "summary": "list the orders of a customer",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "customerId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "orders", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.OrderDTO"}}}
                }
            }
        },
        "/orders/order/{orderId}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["order"],
                "summary": "get one order",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "orderId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "order", "schema": {"$ref": "#/definitions/dto.OrderDTO"}},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["order"],
                "summary": "update the status of an order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "orderId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateOrderStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "updated", "schema": {"$ref": "#/definitions/response.MessageBody"}},
                    "400": {"description": "BadRequestCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        },
        "/checkouts/{paymentId}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["order"],
                "summary": "get the stored checkout of a payment id",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "paymentId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "checkout"},
                    "404": {"description": "NotFoundCode", "schema": {"$ref": "#/definitions/api.FailedResponse"}}
                }
            }
        }
    },
    "definitions": {
        "response.MessageBody": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "dto.PlaceOrderRequest": {
            "type": "object",
            "properties": {
                "cart_items": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "product_link": {"type": "integer"},
                            "quantity": {"type": "integer"},
                            "product": {
                                "type": "object",
                                "properties": {"current_price": {"type": "number", "multipleOf": 0.01}}
                            }
                        }
                    }
                },
                "total_amount": {"type": "number", "multipleOf": 0.01}
            }
        },
        "dto.LineResultDTO": {
            "type": "object",
            "properties": {
                "line": {"type": "integer"},
                "product_link": {"type": "integer"},
                "quantity": {"type": "integer"},
                "price": {"type": "number"},
                "order_id": {"type": "integer"},
                "stock": {"type": "string"}
            }
        },
        "dto.PlaceOrderResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "payment_id": {"type": "string"},
                "total": {"type": "number"},
                "state": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/dto.LineResultDTO"}},
                "cart_cleared": {"type": "boolean"},
                "replayed": {"type": "boolean"}
            }
        },
        "dto.CheckoutFailureResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"$ref": "#/definitions/api.ResponseError"},
                "payment_id": {"type": "string"},
                "state": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/dto.LineResultDTO"}}
            }
        },
        "dto.OrderDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_link": {"type": "integer"},
                "customer_link": {"type": "integer"},
                "quantity": {"type": "integer"},
                "price": {"type": "number"},
                "status": {"type": "string"},
                "payment_id": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.UpdateOrderStatusRequest": {
            "type": "object",
            "properties": {"status": {"type": "string", "enum": ["Pending", "Confirmed", "Shipped", "Delivered", "Cancelled"]}}
        },` + errorDefinitions + `
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

var CatalogSwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "storefront catalog",
	Description:      "商品讀取與庫存異動",
	InfoInstanceName: CatalogInstance,
	SwaggerTemplate:  docTemplateCatalog,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var CartSwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "storefront cart",
	Description:      "購物車",
	InfoInstanceName: CartInstance,
	SwaggerTemplate:  docTemplateCart,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var OrderSwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "storefront order",
	Description:      "下單與訂單查詢",
	InfoInstanceName: OrderInstance,
	SwaggerTemplate:  docTemplateOrder,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(CatalogSwaggerInfo.InstanceName(), CatalogSwaggerInfo)
	swag.Register(CartSwaggerInfo.InstanceName(), CartSwaggerInfo)
	swag.Register(OrderSwaggerInfo.InstanceName(), OrderSwaggerInfo)
}
