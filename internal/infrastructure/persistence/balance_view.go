package persistence

// BalanceViewSQL creates v_enrollment_balances. It only uses correlated
// subqueries and COALESCE so the same statement runs on PostgreSQL and on
// the SQLite test store; the migration ships an identical copy.
const BalanceViewSQL = `CREATE VIEW v_enrollment_balances AS
SELECT
    e.id AS enrollment_id,
    COALESCE(pp.currency, 'MXN') AS currency,
    COALESCE((SELECT SUM(c.amount) FROM charges c
              WHERE c.enrollment_id = e.id AND c.status <> 'void'), 0) AS total_charges,
    COALESCE((SELECT SUM(p.amount) FROM payments p
              WHERE p.enrollment_id = e.id AND p.status = 'posted'), 0) AS total_payments,
    COALESCE((SELECT SUM(c.amount) FROM charges c
              WHERE c.enrollment_id = e.id AND c.status <> 'void'), 0)
  - COALESCE((SELECT SUM(p.amount) FROM payments p
              WHERE p.enrollment_id = e.id AND p.status = 'posted'), 0) AS balance
FROM enrollments e
LEFT JOIN pricing_plans pp ON pp.id = e.pricing_plan_id`

// DropBalanceViewSQL removes the balance view
const DropBalanceViewSQL = `DROP VIEW IF EXISTS v_enrollment_balances`
