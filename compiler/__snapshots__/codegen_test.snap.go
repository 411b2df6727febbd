
[TestCompile_GeneratedSource_Snapshot - 1]
func(ctx context.Context, rc *runtime.RenderContext) (string, error) {
    props, slots, params, url, request := rc.Props, rc.Slots, rc.Params, rc.URL, rc.Request
    _, _, _, _, _ = props, slots, params, url, request
    var b strings.Builder
    rc.Set("card", rc.Load(ctx, "components/card.html"))
    rc.Set("items", rc.Eval("page.items"))
    b.WriteString("<main>\n  <h1>")
    b.WriteString(rc.Str(rc.Eval("page.title")))
    b.WriteString("</h1>\n  ")
    if rc.Truthy(rc.Eval("items")) {
        b.WriteString("<ul>\n    ")
        for _, v1 := range rc.Seq(rc.Eval("items")) {
            rc.Set("item", v1)
            b.WriteString("<li>")
            b.WriteString(rc.Str(rc.Eval("item.label")))
            b.WriteString("</li>")
        }
        b.WriteString("\n  </ul>")
    } else {
        b.WriteString("<p>empty</p>")
    }
    b.WriteString("\n  ")
    if s, ok := slots["footer"]; ok {
        b.WriteString(s)
    } else {
        b.WriteString("<small>no footer</small>")
    }
    b.WriteString("\n  ")
    slots2 := map[string]string{}
    props3 := map[string]any{}
    props3["label"] = rc.Eval("page.cta")
    out4, err := rc.RenderComponent(ctx, rc.Get("card"), props3, slots2)
    if err != nil {
        return "", err
    }
    b.WriteString(out4)
    b.WriteString("\n</main>")
    return b.String(), rc.Err()
}

---
