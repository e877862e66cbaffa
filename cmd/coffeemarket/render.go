package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/angelmondragon/coffeemarket/pkg/pricing"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

var printer = message.NewPrinter(language.Korean)

func won(amount int) string {
	return printer.Sprintf("%d원", amount)
}

func points(amount int) string {
	return printer.Sprintf("%dP", amount)
}

// emit prints v as JSON in --json mode and calls text otherwise.
func (rt *runtime) emit(v any, text func(w *tabwriter.Writer)) error {
	if rt.jsonMode {
		enc := json.NewEncoder(rt.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	text(w)
	return w.Flush()
}

func (rt *runtime) printf(format string, args ...any) {
	fmt.Fprintf(rt.out, format, args...)
}

func writeProducts(w *tabwriter.Writer, products []types.Product) {
	fmt.Fprintln(w, "ID\tNAME\tORIGIN\tTYPE\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s/%s\t%s\t%s\n", p.ProductID, p.ProductName, p.Continent, p.Nationality, p.Type, won(p.BasePrice))
	}
}

func writeCart(w *tabwriter.Writer, items types.Cart, totals pricing.Totals) {
	fmt.Fprintln(w, "LINE\tPRODUCT\tOPTION\tQTY\tTOTAL")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", item.CartItemID, item.ProductName, item.OptionValue, item.Quantity, won(item.TotalPrice))
	}
	fmt.Fprintf(w, "\t\t합계\t%d\t%s\n", totals.TotalCount, won(totals.TotalPrice))
}

func writeSummary(w *tabwriter.Writer, s pricing.Summary) {
	fmt.Fprintf(w, "상품 금액\t%s\n", won(s.TotalPrice))
	fmt.Fprintf(w, "포인트 사용\t-%s\n", won(s.UsePoint))
	fmt.Fprintf(w, "최종 결제 금액\t%s\n", won(s.FinalPrice))
	fmt.Fprintf(w, "적립 예정\t%s\n", points(s.EarnedPoint))
}

func writeAddresses(w *tabwriter.Writer, addresses []types.Address) {
	fmt.Fprintln(w, "ID\tNAME\tRECIPIENT\tPHONE\tADDRESS\tDEFAULT")
	for _, a := range addresses {
		mark := ""
		if a.IsDefault {
			mark = "기본"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t(%s) %s %s\t%s\n", a.AddressID, a.Name, a.Recipient, a.Phone, a.Zipcode, a.Address, a.AddressDetail, mark)
	}
}

func writeOrders(w *tabwriter.Writer, orders []types.Order) {
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tITEMS\tPAID")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", o.OrderID, stamp(o.CreatedAt), o.Status.Label(), len(o.Items), won(o.FinalPrice))
	}
}

func writeOrder(w *tabwriter.Writer, o types.Order) {
	fmt.Fprintf(w, "주문번호\t%d\n", o.OrderID)
	fmt.Fprintf(w, "주문일시\t%s\n", stamp(o.CreatedAt))
	fmt.Fprintf(w, "상태\t%s\n", o.Status.Label())
	fmt.Fprintf(w, "받는 분\t%s (%s)\n", o.Recipient, o.Phone)
	fmt.Fprintf(w, "주소\t(%s) %s %s\n", o.Zipcode, o.Address, o.AddressDetail)
	if o.Memo != "" {
		fmt.Fprintf(w, "요청사항\t%s\n", o.Memo)
	}
	for _, item := range o.Items {
		fmt.Fprintf(w, "  %s\t%s x%d\t%s\n", item.ProductName, item.OptionValue, item.Quantity, won(item.Price))
	}
	fmt.Fprintf(w, "상품 금액\t%s\n", won(o.TotalPrice))
	fmt.Fprintf(w, "포인트 사용\t-%s\n", won(o.UsedPoint))
	fmt.Fprintf(w, "결제 금액\t%s\n", won(o.FinalPrice))
	fmt.Fprintf(w, "적립 포인트\t%s\n", points(o.EarnedPoint))
}

func writePointHistory(w *tabwriter.Writer, history []types.PointHistory) {
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
	for _, h := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", stamp(h.CreatedAt), h.Type, points(h.Amount), points(h.Balance), h.Description)
	}
}

func writeReviews(w *tabwriter.Writer, reviews []types.Review) {
	fmt.Fprintln(w, "ID\tPRODUCT\tRATING\tDATE\tCONTENT")
	for _, r := range reviews {
		fmt.Fprintf(w, "%d\t%s\t%d/5\t%s\t%s\n", r.ReviewID, r.ProductName, r.Rating, stamp(r.CreatedAt), r.Content)
	}
}

func writeInquiries(w *tabwriter.Writer, inquiries []types.Inquiry) {
	fmt.Fprintln(w, "ID\tPRODUCT\tTITLE\tSTATUS\tDATE")
	for _, q := range inquiries {
		status := "답변대기"
		if q.IsAnswered {
			status = "답변완료"
		}
		title := q.Title
		if q.IsSecret {
			title = "[비밀] " + title
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", q.InquiryID, q.ProductName, title, status, stamp(q.CreatedAt))
	}
}

func stamp(t *types.Timestamp) string {
	if t == nil {
		return "-"
	}
	return t.String()
}
