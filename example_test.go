package sqlquery_test

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/coregx/sqlquery"
)

type User struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Status int    `db:"status"`
}

func (User) TableName() string { return "users" }

func ExampleSQLQuery_SQL() {
	d, _ := sqlquery.Lookup("postgres")
	q := sqlquery.New(d).
		FromEntity(sqlquery.Table[User](), "u", "").
		LeftJoin("orders", "o").On("o.user_id", sqlquery.OpEqual, "u.id").
		WhereColumn(sqlquery.Column[User]("Status"), sqlquery.OpEqual, 1).
		WhereExp(sqlquery.Or(sqlquery.Like("u.name", "ann"), sqlquery.Eq("u.id", 7))).
		OrderBy("u.name desc")

	sql, err := q.SQL()
	if err != nil {
		panic(err)
	}
	fmt.Println(sql)
	// Output:
	// Select *
	// From "users" As "u"
	// Left Join "orders" As "o" On "o"."user_id"="u"."id"
	// Where "u"."status"={:_p_w0} And (("u"."name" Like {:_p_w1}) Or ("u"."id"={:_p_w2}))
	// Order By "u"."name" DESC
}

func ExampleSQLQuery_DebugSQL() {
	d, _ := sqlquery.Lookup("mysql")
	q := sqlquery.New(d).
		Select("id, name").
		From("users").
		Where("status", sqlquery.OpIn, []int{1, 2}).
		OrderBy("id").
		Page(sqlquery.NewPager(3, 10))

	sql, err := q.DebugSQL()
	if err != nil {
		panic(err)
	}
	fmt.Println(sql)
	// Output:
	// Select `id`,`name`
	// From `users`
	// Where `status` In (1,2)
	// Order By `id`
	// Limit 10 Offset 20
}

func ExamplePage() {
	db, err := sqlquery.Open("sqlite", ":memory:", sqlquery.WithMaxOpenConns(1))
	if err != nil {
		panic(err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, status INTEGER)`,
		`INSERT INTO users VALUES (1, 'ann', 1), (2, 'bob', 1), (3, 'cid', 0)`,
	} {
		if _, err := db.SQLDB().Exec(stmt); err != nil {
			panic(err)
		}
	}

	q := db.Query().From("users").Where("status", sqlquery.OpEqual, 1).OrderBy("name")
	page, err := sqlquery.Page[User](context.Background(), q, sqlquery.NewPager(1, 1), nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(page.TotalCount, page.PageCount, page.Items[0].Name)
	// Output: 2 2 ann
}
