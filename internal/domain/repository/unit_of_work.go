package repository

// TxRepos repositorios atados a una misma transacción de base de datos.
type TxRepos struct {
	Stock     StockRepository
	Movements StockMovementRepository
	Products  ProductRepository
	Purchases PurchaseRepository
	Orders    OrderRepository
}
