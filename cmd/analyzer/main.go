package main

import (
    "flag"
    "fmt"
    "os"

    "logreg/internal/data"
    "logreg/internal/plotting"
)

func main() {
    lossCsv := flag.String("loss_csv", "data/loss.csv", "CSV com a loss por iteração")
    outImg := flag.String("out_img", "cmd/api/static/loss_curve.png", "Imagem de saída (png, svg ou pdf)")
    from := flag.Int("from", 100, "Primeira iteração da janela")
    to := flag.Int("to", 50000, "Fim da janela (0 = até o final)")
    flag.Parse()

    s, err := analyze(*lossCsv, *outImg, plotting.Window{From: *from, To: *to})
    if err != nil { fmt.Println("Erro:", err); os.Exit(1) }
    fmt.Printf("janela=[%d,%d) | primeira=%.6f | última=%.6f | mínima=%.6f | média=%.6f\n", s.From, s.To, s.First, s.Last, s.Min, s.Mean)
    fmt.Println("Gráfico salvo em:", *outImg)
}

func analyze(lossPath, imgPath string, w plotting.Window) (plotting.Summary, error) {
    losses, err := data.ReadLossCSV(lossPath)
    if err != nil { return plotting.Summary{}, err }
    s, err := plotting.Summarize(losses, w)
    if err != nil { return s, err }
    return s, plotting.LossCurve(imgPath, losses, w)
}
